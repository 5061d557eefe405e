package config

// MountOptions names and tunes the read-only FUSE view of a tree.
// go-fuse types stay in the mount package.
type MountOptions struct {
	Debug  bool   // log every FUSE request
	FsName string // source column in mount tables
	Name   string // fs subtype, shown as fuse.<Name>
}

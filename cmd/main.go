package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/brettbedarf/vft/config"
	"github.com/brettbedarf/vft/filesystem"
	"github.com/brettbedarf/vft/fstab"
	"github.com/brettbedarf/vft/internal/util"
	"github.com/brettbedarf/vft/mount"
	"github.com/brettbedarf/vft/requests"
	"github.com/brettbedarf/vft/vfs"
)

func main() {
	// Parse command line arguments
	var (
		configPath string
		verbose    int
		nodesDef   string
		exportPath string
		printTree  bool
		umount     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config file (.yaml, .yml or .json)")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.StringVar(&nodesDef, "nodes", "", "Path to nodes def file (.yaml, .yml or .json)")
	flag.StringVar(&nodesDef, "n", "", "--nodes (shorthand)")
	flag.StringVar(&exportPath, "export", "", "Write the resulting tree as a nodes def file")
	flag.BoolVar(&printTree, "tree", false, "Print the tree to stdout")
	flag.BoolVar(&printTree, "t", false, "--tree (shorthand)")
	flag.BoolVar(&umount, "umount", false,
		"Unmount the fs first if needed before mounting again. Useful for debuggers that don't exit properly.")
	flag.BoolVar(&umount, "u", false, "--umount (shorthand)")
	flag.IntVar(&verbose, "verbose", config.InfoVerbose, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", config.InfoVerbose, "--verbose (shorthand)")
	flag.Parse()

	override := &config.ConfigOverride{}
	if configPath != "" {
		var err error
		if override, err = config.LoadConfigOverrideFile(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", configPath, err)
			os.Exit(1)
		}
	}
	// An explicit flag wins over the config file
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "verbose" || f.Name == "v" {
			override.LogLvl = &verbose
		}
	})
	if override.LogLvl == nil {
		override.LogLvl = &verbose
	}
	cfg := config.NewConfig(override)

	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")

	mnt := flag.Arg(0)
	logger.Info().Str("config", configPath).Str("nodes", nodesDef).Str("mnt", mnt).Msg("VFT initializing")

	tab := fstab.New()
	v, err := tab.Mount(vfs.Config{StorageID: cfg.StorageID})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create tree")
	}

	// Load definitions
	if nodesDef != "" {
		defs, err := requests.LoadFile(nodesDef)
		if err != nil {
			logger.Fatal().Err(err).Str("nodes", nodesDef).Msg("Failed to read nodes file")
		}
		res := requests.Apply(v, defs)
		for _, defErr := range res.Errors {
			logger.Warn().Err(defErr.Err).Int("index", defErr.Index).Str("path", defErr.Path).Msg("Failed to add node")
		}
	} else {
		logger.Warn().Msg("No nodes file provided")
	}

	info, err := v.Info(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get tree info")
	}
	logger.Info().
		Str("storageID", v.StorageID()).
		Int("entries", info.Memory.Entries).
		Str("size", humanize.IBytes(info.Memory.Size*filesystem.KB)).
		Msg("Tree ready")

	if printTree {
		if err := dumpTree(v); err != nil {
			logger.Error().Err(err).Msg("Failed to print tree")
		}
	}
	if exportPath != "" {
		if err := exportTree(v, exportPath); err != nil {
			logger.Fatal().Err(err).Str("export", exportPath).Msg("Failed to export tree")
		}
		logger.Info().Str("export", exportPath).Msg("Exported tree")
	}

	if mnt == "" {
		return
	}
	// Try unmount if requested
	if umount { // send cli command
		cmd := exec.Command("fusermount", "-u", mnt)
		// we ignore error here if not already mounted
		cmd.Run() // nolint:errcheck
	}

	srv, err := mount.Mount(mnt, v, mount.OptionsFromConfig(cfg))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to mount filesystem")
	}

	// Setup signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	logger.Info().Str("mountpoint", mnt).Msg("Filesystem mounted successfully")

	// Wait for termination signal
	sig := <-signalChan
	logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")

	if err := srv.Unmount(); err != nil {
		logger.Error().Err(err).Msg("Failed to unmount filesystem")
	}
	tab.Unregister(v.StorageID())
}

func dumpTree(v *vfs.VFS) error {
	return v.Walk(v.Root(), func(p string, e filesystem.Entry) error {
		depth := strings.Count(p, "/")
		if e.IsRoot() {
			depth = 0
		}
		name := e.Name
		switch e.Variant() {
		case filesystem.VariantDirectory:
			name += "/"
		case filesystem.VariantSymlink:
			name += " -> " + e.Link
		}
		_, err := fmt.Printf("%s%s (%s)\n", strings.Repeat("  ", depth), name, humanize.IBytes(e.Size*filesystem.KB))
		return err
	})
}

func exportTree(v *vfs.VFS, path string) error {
	format, err := requests.FormatFromPath(path)
	if err != nil {
		return err
	}
	defs, err := requests.Export(v)
	if err != nil {
		return err
	}
	data, err := requests.Encode(defs, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

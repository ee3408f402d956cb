package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/openinvoice/relver/pkg/release"
)

const (
	bumpDesc = `This command bumps the parser version and regenerates the manifest
`
	bumpExample = `  relver bump [version]
  # Increment the patch version of the package in the current directory
  relver bump

  # Release an explicit version
  relver bump 2.0.0

  # Operate on a package in another directory
  relver bump --dir ./parsers/invoice
`

	bumpInstructions = `
Next steps:
  1. Review the manifest changes above.
  2. Commit the manifest together with the parser sources.
  3. Tag the release so consumers pick up the new version.
`
)

// NewBumpCmd returns the bump command.
func NewBumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bump [version]",
		Short:   "Bump the parser version and regenerate the manifest",
		Long:    bumpDesc,
		Example: bumpExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			u, quiet, err := updaterFromFlags(cc)
			if err != nil {
				return err
			}

			explicit := ""
			if len(args) == 1 {
				explicit = args[0]
			}

			res, err := u.Bump(explicit)
			if err != nil {
				return fmt.Errorf("bump failed: %w", err)
			}

			if quiet {
				return nil
			}

			cc.Printf("Version: %s -> %s\n", res.OldVersion, res.NewVersion)

			data, err := res.Manifest.Encode()
			if err != nil {
				return fmt.Errorf("bump failed: %w", err)
			}

			cc.Printf("\nWrote %s:\n%s", u.ManifestName, data)

			if isatty.IsTerminal(os.Stdout.Fd()) {
				cc.Print(bumpInstructions)
			}

			return nil
		},
		SilenceUsage: true,
	}

	addPackageFlags(cmd)

	return cmd
}

// addPackageFlags registers the flags shared by commands that operate on a
// parser package.
func addPackageFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("dir", "d", ".", "Base directory of the parser package")
	if err := cmd.MarkFlagDirname("dir"); err != nil {
		panic(err)
	}

	cmd.Flags().StringP("config", "c", "", "Path to a relver config file")
	if err := cmd.MarkFlagFilename("config", "yaml", "yml"); err != nil {
		panic(err)
	}

	cmd.Flags().BoolP("quiet", "q", false, "Run in quiet mode")
}

// updaterFromFlags builds a [release.Updater] from the package flags.
func updaterFromFlags(cc *cobra.Command) (*release.Updater, bool, error) {
	flags := cc.Flags()

	var merr error

	dir, err := flags.GetString("dir")
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	cfgPath, err := flags.GetString("config")
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	quiet, err := flags.GetBool("quiet")
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	if merr != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidArgument, merr)
	}

	u := release.New(dir)

	if cfgPath != "" {
		cfg, err := release.LoadConfig(cfgPath)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load config: %w", err)
		}

		cfg.Apply(u)
	}

	return u, quiet, nil
}

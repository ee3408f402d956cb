package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ErrManifestStale = errors.New("manifest does not match tracked files")

const verifyDesc = `This command checks the tracked parser files against the manifest
`

// NewVerifyCmd returns the verify command.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check tracked files against the manifest",
		Long:  verifyDesc,
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			u, quiet, err := updaterFromFlags(cc)
			if err != nil {
				return err
			}

			res, err := u.Verify()
			if err != nil {
				return fmt.Errorf("verify failed: %w", err)
			}

			if !quiet {
				for _, f := range res.Files {
					cc.Printf("%s: %s\n", f.Name, f.State)
				}
			}

			if !res.Clean() {
				return fmt.Errorf("%w: version %s", ErrManifestStale, res.Version)
			}

			return nil
		},
		SilenceUsage: true,
	}

	addPackageFlags(cmd)

	return cmd
}

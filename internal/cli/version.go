package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...cli.Version=v1.2.3".
// It also tags Sentry releases as sb@<Version>.
var Version = "dev"

// buildInfo describes the running binary.
type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Go      string `json:"go"`
}

func currentBuild() buildInfo {
	b := buildInfo{Version: Version, Go: runtime.Version()}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 12 {
				b.Commit = s.Value[:12]
			}
		}
	}
	return b
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := currentBuild()
			if isJSON() {
				return printJSON(b)
			}
			if b.Commit != "" {
				fmt.Printf("sb %s (%s, %s)\n", b.Version, b.Commit, b.Go)
			} else {
				fmt.Printf("sb %s (%s)\n", b.Version, b.Go)
			}
			return nil
		},
	}
}

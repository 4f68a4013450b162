package cmd

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/s0up4200/elnk/config"
	"github.com/s0up4200/elnk/elnk"
)

const defaultRepository = "s0up4200/elnk"

var (
	version   = "dev"
	buildTime = "unknown"

	checkOnly bool
)

// SetVersion sets the build information reported by the version command
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Args:        cobra.NoArgs,
	Annotations: standaloneAnnotations,
	RunE:        runVersion,
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update elnk to the latest release",
	Long: `Check GitHub for a newer release of elnk and replace the running binary with it.
The repository is read from update.repository in the config.`,
	Args:        cobra.NoArgs,
	Annotations: standaloneAnnotations,
	RunE:        runUpdate,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "only check for a newer release")
}

type versionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := versionInfo{
		Version:   version,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	return render(newPrinter(cmd), info, nil, func(w io.Writer, info versionInfo) {
		fmt.Fprintf(w, "elnk %s\n", info.Version)
		fmt.Fprintf(w, "- Built: %s\n", info.BuildTime)
		fmt.Fprintf(w, "- Go: %s (%s)\n", info.GoVersion, info.Platform)
	})
}

// updateReport is what the update command prints
type updateReport struct {
	Current   string `json:"current"`
	Latest    string `json:"latest"`
	Available bool   `json:"available"`
	Updated   bool   `json:"updated"`
	AssetName string `json:"assetName,omitempty"`
	AssetSize string `json:"assetSize,omitempty"`
	NotesURL  string `json:"notesUrl,omitempty"`
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	current, err := semver.ParseTolerant(version)
	if err != nil {
		return fmt.Errorf("cannot update a development build (version %q)", version)
	}

	repository := defaultRepository
	if loaded, err := config.Load(cfgFile); err != nil {
		logger.Debug().Err(err).Msg("No usable config, checking the default repository")
	} else {
		repository = loaded.Update.Repository
	}

	report, release, err := checkForUpdate(ctx, repository, current)
	if err == nil && report.Available && !checkOnly {
		logger.Info().Str("version", report.Latest).Str("asset", report.AssetName).Msg("Updating")

		var exe string
		if exe, err = selfupdate.ExecutablePath(); err != nil {
			err = fmt.Errorf("could not locate executable path: %w", err)
		} else if err = selfupdate.UpdateTo(ctx, release.AssetURL, release.AssetName, exe); err != nil {
			err = fmt.Errorf("failed to update binary: %w", err)
		} else {
			report.Updated = true
		}
	}

	return render(newPrinter(cmd), report, err, printUpdateReport)
}

// checkForUpdate compares current with the latest release of repository
func checkForUpdate(ctx context.Context, repository string, current semver.Version) (updateReport, *selfupdate.Release, error) {
	report := updateReport{Current: current.String()}

	release, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repository))
	if err != nil {
		return report, nil, fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return report, nil, fmt.Errorf("latest version for %s/%s could not be found in %s", runtime.GOOS, runtime.GOARCH, repository)
	}

	latest, err := semver.ParseTolerant(release.Version())
	if err != nil {
		return report, nil, fmt.Errorf("invalid release version %q: %w", release.Version(), err)
	}

	report.Latest = latest.String()
	report.Available = latest.GT(current)
	report.AssetName = release.AssetName
	report.AssetSize = elnk.FormatBytes(int64(release.AssetByteSize), 1)
	report.NotesURL = release.URL

	return report, release, nil
}

func printUpdateReport(w io.Writer, report updateReport) {
	switch {
	case !report.Available:
		fmt.Fprintf(w, "✓ elnk %s is the latest version\n", report.Current)
	case report.Updated:
		fmt.Fprintf(w, "✓ Updated elnk %s → %s\n", report.Current, report.Latest)
	default:
		fmt.Fprintf(w, "A new version is available: %s → %s\n", report.Current, report.Latest)
		fmt.Fprintf(w, "- Asset: %s (%s)\n", report.AssetName, report.AssetSize)
		if report.NotesURL != "" {
			fmt.Fprintf(w, "- Release notes: %s\n", report.NotesURL)
		}
		fmt.Fprintln(w, "Run 'elnk update' to install it.")
	}
}

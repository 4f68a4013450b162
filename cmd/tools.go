package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/elnk/elnk"
)

var (
	// Validate flags
	noLocalhost bool
	noIP        bool
	protocols   []string

	// Alias flags
	aliasLength  int
	aliasNumbers bool
	aliasSpecial bool
	aliasCount   int

	// Bytes flags
	decimals int
)

var standaloneAnnotations = map[string]string{annotationStandalone: "true"}

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:         "validate <url>",
	Short:       "Check whether a URL can be shortened",
	Args:        cobra.ExactArgs(1),
	Annotations: standaloneAnnotations,
	RunE:        runValidate,
}

// aliasCmd represents the alias command
var aliasCmd = &cobra.Command{
	Use:         "alias",
	Short:       "Generate random aliases",
	Args:        cobra.NoArgs,
	Annotations: standaloneAnnotations,
	RunE:        runAlias,
}

// bytesCmd represents the bytes command
var bytesCmd = &cobra.Command{
	Use:         "bytes <n>",
	Short:       "Format a byte count for humans",
	Args:        cobra.ExactArgs(1),
	Annotations: standaloneAnnotations,
	RunE:        runBytes,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(aliasCmd)
	rootCmd.AddCommand(bytesCmd)

	defaults := elnk.DefaultURLOptions()
	validateCmd.Flags().BoolVar(&noLocalhost, "no-localhost", false, "reject localhost URLs")
	validateCmd.Flags().BoolVar(&noIP, "no-ip", false, "reject IP address hosts")
	validateCmd.Flags().StringSliceVar(&protocols, "protocols", defaults.AllowedProtocols, "allowed protocols")

	aliasCmd.Flags().IntVarP(&aliasLength, "length", "l", elnk.DefaultAliasLength, "alias length")
	aliasCmd.Flags().BoolVar(&aliasNumbers, "numbers", true, "include digits")
	aliasCmd.Flags().BoolVar(&aliasSpecial, "special", false, "include - and _")
	aliasCmd.Flags().IntVarP(&aliasCount, "count", "n", 1, "number of aliases to generate")

	bytesCmd.Flags().IntVarP(&decimals, "decimals", "d", 2, "decimal places")
}

func runValidate(cmd *cobra.Command, args []string) error {
	opts := elnk.DefaultURLOptions()
	opts.AllowLocalhost = !noLocalhost
	opts.AllowIP = !noIP
	opts.AllowedProtocols = protocols

	result := elnk.ValidateURL(args[0], opts)

	var err error
	if !result.Valid {
		err = fmt.Errorf("invalid URL: %s", result.Error)
	}

	p := newPrinter(cmd)
	if p.asJSON {
		// The validation result is the payload in both cases
		if err := p.writeJSON(elnk.NewResult(result, nil)); err != nil {
			return err
		}
		if !result.Valid {
			return errReported
		}
		return nil
	}

	return render(p, result, err, func(w io.Writer, result elnk.URLValidation) {
		fmt.Fprintln(w, "✓ URL is valid")
		fmt.Fprintf(w, "- Protocol: %s\n", result.Protocol)
		fmt.Fprintf(w, "- Host: %s\n", result.Hostname)
		if result.Pathname != "" {
			fmt.Fprintf(w, "- Path: %s\n", result.Pathname)
		}
		if result.Search != "" {
			fmt.Fprintf(w, "- Query: %s\n", result.Search)
		}
	})
}

func runAlias(cmd *cobra.Command, args []string) error {
	if aliasCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}
	if aliasLength < 1 {
		return fmt.Errorf("--length must be at least 1")
	}

	opts := elnk.AliasOptions{Length: aliasLength, Numbers: aliasNumbers, Special: aliasSpecial}

	aliases := make([]string, 0, aliasCount)
	for range aliasCount {
		alias, err := elnk.GenerateAlias(opts)
		if err != nil {
			return err
		}
		aliases = append(aliases, alias)
	}

	return render(newPrinter(cmd), aliases, nil, func(w io.Writer, aliases []string) {
		fmt.Fprintln(w, strings.Join(aliases, "\n"))
	})
}

func runBytes(cmd *cobra.Command, args []string) error {
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid byte count %q", args[0])
	}

	return render(newPrinter(cmd), elnk.FormatBytes(n, decimals), nil, func(w io.Writer, formatted string) {
		fmt.Fprintln(w, formatted)
	})
}

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/s0up4200/elnk/elnk"
)

// domainsCmd represents the domains command
var domainsCmd = &cobra.Command{
	Use:   "domains [id]",
	Short: "List custom domains, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDomains,
}

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account that owns the API key",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to elnk.pro",
	Long:  `Test the connection to the elnk.pro API and display the client settings.`,
	Args:  cobra.NoArgs,
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(domainsCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(testCmd)
}

func runDomains(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	p := newPrinter(cmd)

	if len(args) == 1 {
		domain, err := client.GetDomain(ctx, elnk.ID(args[0]))
		return render(p, domain, err, func(w io.Writer, domain *elnk.Domain) {
			printDomain(w, *domain)
		})
	}

	domains, err := client.GetDomains(ctx)
	return render(p, domains, err, func(w io.Writer, domains []elnk.Domain) {
		if len(domains) == 0 {
			fmt.Fprintln(w, "No custom domains configured.")
			return
		}
		fmt.Fprintf(w, "Available domains:\n")
		for _, domain := range domains {
			printDomain(w, domain)
		}
	})
}

func printDomain(w io.Writer, domain elnk.Domain) {
	fmt.Fprintf(w, "  • %s (ID: %s)", domain.Name(), domain.ID)
	if domain.Status != "" {
		fmt.Fprintf(w, " [%s]", domain.Status)
	}
	fmt.Fprintln(w)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	user, err := client.GetUser(commandContext(cmd))
	return render(newPrinter(cmd), user, err, printUser)
}

func printUser(w io.Writer, user *elnk.User) {
	fmt.Fprintf(w, "- Email: %s\n", user.Email)
	if user.Name != "" {
		fmt.Fprintf(w, "- Name: %s\n", user.Name)
	}
	fmt.Fprintf(w, "- ID: %s\n", user.ID)
	if user.Type != "" {
		fmt.Fprintf(w, "- Plan: %s\n", user.Type)
	}
}

// connectionReport is what the test command prints
type connectionReport struct {
	User     *elnk.User    `json:"user"`
	Settings elnk.Settings `json:"settings"`
	History  string        `json:"history"`
}

func runTest(cmd *cobra.Command, args []string) error {
	settings := client.Settings()
	p := newPrinter(cmd)

	if !p.asJSON {
		fmt.Fprintf(p.out, "Testing connection to elnk.pro at %s...\n", settings.BaseURL)
	}

	user, err := client.TestConnection(commandContext(cmd))
	report := connectionReport{User: user, Settings: settings, History: boolToStatus(store != nil)}

	return render(p, report, err, func(w io.Writer, report connectionReport) {
		fmt.Fprintln(w, "✓ Connection successful!")
		fmt.Fprintf(w, "\nAccount:\n")
		printUser(w, report.User)

		fmt.Fprintf(w, "\nSettings:\n")
		fmt.Fprintf(w, "- Timeout: %s\n", report.Settings.Timeout)
		if report.Settings.DomainID != "" {
			fmt.Fprintf(w, "- Domain ID: %s\n", report.Settings.DomainID)
		}
		if report.Settings.ProjectID != "" {
			fmt.Fprintf(w, "- Project ID: %s\n", report.Settings.ProjectID)
		}
		fmt.Fprintf(w, "- History: %s\n", report.History)
	})
}

func boolToStatus(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}

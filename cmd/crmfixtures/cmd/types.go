package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/forgo/crmfixtures/internal/record"
)

var typesCmd = &cobra.Command{
	Use:   "types [TYPE...]",
	Short: "List registered record types",
	Long: `Lists the registered record types, or the fields of the named types.

Types come from the built-in CRM catalog plus the schema overlay.`,
	RunE: runTypes,
}

func init() {
	rootCmd.AddCommand(typesCmd)
}

func runTypes(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	if len(args) == 0 {
		fmt.Fprintln(w, "TYPE\tPREFIX\tFIELDS")
		for _, name := range reg.Names() {
			t, _ := reg.Type(name)
			fmt.Fprintf(w, "%s\t%s\t%d\n", t.Name(), t.KeyPrefix(), len(t.Fields()))
		}
		return nil
	}

	for _, name := range args {
		t, err := reg.Type(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s (%s)\n", t.Name(), t.KeyPrefix())
		fmt.Fprintln(w, "  FIELD\tKIND\tREQUIRED\tDEFAULT")
		for _, f := range t.Fields() {
			fmt.Fprintf(w, "  %s\t%s\t%t\t%s\n", f.Name, kindLabel(f), f.Required, defaultLabel(f))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func kindLabel(f record.FieldDefinition) string {
	switch f.Kind {
	case record.KindReference:
		return "reference(" + f.RefType + ")"
	case record.KindEnum:
		return "enum(" + strings.Join(f.Options, "|") + ")"
	}
	return f.Kind.String()
}

func defaultLabel(f record.FieldDefinition) string {
	switch f.Policy {
	case record.PolicyFixed:
		return fmt.Sprintf("%v", f.Default)
	case record.PolicyRelated:
		if f.Derive != nil {
			return "from " + f.Derive.Via + "." + f.Derive.Source
		}
		return "linked"
	case record.PolicyGenerated:
		return "generated"
	}
	return ""
}

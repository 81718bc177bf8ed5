package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sells-group/school-finder/internal/dataset"
	"github.com/sells-group/school-finder/internal/enrich"
	"github.com/sells-group/school-finder/internal/model"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "Write the HCL/HTL/HML columns from the higher mother tongue lists",
	Long: `Merge the published higher mother tongue lists into the dataset's HCL, HTL
and HML columns ("Y" or "-"). Published names are matched to dataset names
after normalising case, apostrophes and "Secondary School" suffixes, then by
similarity.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("languages"); err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("file")
		path, _ := cmd.Flags().GetString("dataset")
		output, _ := cmd.Flags().GetString("output")
		input := stringFlagOr(path, cfg.Data.Dataset)
		return runLanguages(input, stringFlagOr(output, input), stringFlagOr(file, cfg.Data.LanguagesFile), os.Stdout)
	},
}

func init() {
	languagesCmd.Flags().String("file", "", "higher mother tongue JSON (default: data.languages_file)")
	languagesCmd.Flags().String("dataset", "", "dataset CSV (default: data.dataset)")
	languagesCmd.Flags().StringP("output", "o", "", "output CSV (default: overwrite the dataset)")
	rootCmd.AddCommand(languagesCmd)
}

func runLanguages(input, output, listsPath string, out io.Writer) error {
	lists, err := enrich.LoadLanguageLists(listsPath)
	if err != nil {
		return err
	}
	tbl, err := dataset.ReadTableFile(input)
	if err != nil {
		return err
	}

	rep := enrich.MergeLanguages(tbl, lists)
	if err := tbl.WriteFile(output); err != nil {
		return err
	}

	renamed := make([]string, 0, len(rep.Renamed))
	for from := range rep.Renamed {
		renamed = append(renamed, from)
	}
	sort.Strings(renamed)
	for _, from := range renamed {
		_, _ = fmt.Fprintf(out, "  '%s' -> '%s'\n", from, rep.Renamed[from])
	}
	for _, name := range rep.Unmatched {
		_, _ = fmt.Fprintf(out, "  WARNING: No match for '%s'\n", name)
	}

	_, _ = fmt.Fprintln(out, "\nMatched schools:")
	for _, lang := range model.AllLanguages {
		_, _ = fmt.Fprintf(out, "  - %s: %d/%d\n", lang, rep.Marked[lang], rep.Listed[lang])
	}
	_, _ = fmt.Fprintf(out, "\nUpdated %s with HCL, HTL, HML columns\n", output)
	return nil
}

// Command seedtags converts a topic-tag Excel workbook into a SQL seed file
// for the tags table. The first sheet is read column A from row 2 onward,
// one tag name per row.
// Usage: go run ./cmd/seedtags <tags.xlsx>
// Output: db/seeds/tags.sql
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: seedtags <tags.xlsx>")
	}
	xlsxPath := os.Args[1]
	outPath := "db/seeds/tags.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", sheetName, err)
	}

	seen := make(map[string]bool)
	var names []string
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) == 0 {
			continue
		}
		name := strings.TrimSpace(rows[i][0])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return fmt.Errorf("no tag names found in %s", xlsxPath)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	fmt.Fprintf(out, "-- Tag vocabulary seed data generated from %s.\n", xlsxPath)
	fmt.Fprintf(out, "-- %d tags.\n", len(names))
	fmt.Fprintln(out, "BEGIN;")
	fmt.Fprintln(out)

	values := make([]string, len(names))
	for i, name := range names {
		values[i] = fmt.Sprintf("    (gen_random_uuid(), '%s', 0, now())",
			strings.ReplaceAll(name, "'", "''"))
	}
	fmt.Fprintln(out, "INSERT INTO tags (id, name, usage_count, created_at) VALUES")
	fmt.Fprintln(out, strings.Join(values, ",\n"))
	fmt.Fprintln(out, "ON CONFLICT (name) DO NOTHING;")

	fmt.Fprintln(out)
	fmt.Fprintln(out, "COMMIT;")

	log.Printf("Generated %d tags in %s", len(names), outPath)
	return nil
}

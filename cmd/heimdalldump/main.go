// Command heimdalldump is a small introspection debug tool that dumps
// what the object reader recovers from a binary or a directory of
// binaries, without driving a linker plugin or writing an SBOM.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Heimdall-SBOM/heimdall-sub003/dwarfreader"
	"github.com/Heimdall-SBOM/heimdall-sub003/hashservice"
	"github.com/Heimdall-SBOM/heimdall-sub003/license"
	"github.com/Heimdall-SBOM/heimdall-sub003/objectreader"
)

var (
	wantSymbols  bool
	wantSections bool
	wantDeps     bool
	wantLicense  bool
	wantDWARF    bool
	wantAll      bool
)

func prettyPrint(v any) string {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<marshal error: %v>", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return pretty.String()
}

func isDirectory(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.IsDir()
}

func dumpOne(path string, cmd *cobra.Command) {
	log.Printf("Processing filename %s", path)

	reader := objectreader.New()
	info, err := reader.Read(path)
	if err != nil {
		log.Printf("Error while reading file: %s, reason: %s", path, err)
		return
	}

	if wantSymbols || wantAll {
		fmt.Println(prettyPrint(info.Symbols))
	}
	if wantSections || wantAll {
		fmt.Println(prettyPrint(info.Sections))
	}
	if wantDeps || wantAll {
		fmt.Println(prettyPrint(info.Dependencies))
	}
	if wantLicense || wantAll {
		h := license.New()
		symbolNames := make([]string, len(info.Symbols))
		for i, s := range info.Symbols {
			symbolNames[i] = s.Name
		}
		fmt.Println(h.DetectLicense(path, symbolNames))
	}
	if wantDWARF || wantAll {
		dr := dwarfreader.New()
		defer dr.Close()
		var sources []string
		dr.ExtractSourceFiles(path, &sources)
		fmt.Println(prettyPrint(sources))
	}

	hashes := hashservice.New()
	if sum, err := hashes.HashFile(path, hashservice.SHA256); err == nil {
		fmt.Println("sha256:", sum)
	}
}

func dump(cmd *cobra.Command, args []string) {
	filePath := args[0]

	if !isDirectory(filePath) {
		dumpOne(filePath, cmd)
		return
	}

	var fileList []string
	filepath.Walk(filePath, func(path string, f os.FileInfo, err error) error {
		if err == nil && !f.IsDir() {
			fileList = append(fileList, path)
		}
		return nil
	})
	for _, file := range fileList {
		dumpOne(file, cmd)
	}
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "heimdalldump",
		Short: "Introspects a binary the way the SBOM core would",
		Long:  "Dumps the per-file evidence the Metadata Extractor recovers, without driving a linker plugin",
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("heimdalldump 0.1.0")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Dumps a file or a directory of files",
		Args:  cobra.MinimumNArgs(1),
		Run:   dump,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().BoolVarP(&wantSymbols, "symbols", "", false, "Dump symbol table")
	dumpCmd.Flags().BoolVarP(&wantSections, "sections", "", false, "Dump section headers")
	dumpCmd.Flags().BoolVarP(&wantDeps, "deps", "", false, "Dump dependency tokens")
	dumpCmd.Flags().BoolVarP(&wantLicense, "license", "", false, "Run the license heuristic")
	dumpCmd.Flags().BoolVarP(&wantDWARF, "dwarf", "", false, "Dump DWARF source files")
	dumpCmd.Flags().BoolVarP(&wantAll, "all", "", false, "Dump everything")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

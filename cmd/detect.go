package cmd

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type detectResultJSON struct {
	Image    string   `json:"image"`
	Concerns []string `json:"concerns"`
}

var detectCmd = &cobra.Command{
	Use:   "detect IMAGE",
	Short: "Guess skin concerns from a face photo",
	Long: "Run the photo heuristic on a JPEG, PNG or GIF image and print the concerns it finds.\n" +
		"Pass the same photo to the root command with --image to merge them into a recommendation.",
	Example: `  skinrec detect selfie.jpg
  skinrec detect selfie.png --json`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	path := args[0]
	concerns, err := detectImageConcerns(path)
	if err != nil {
		return err
	}
	if concerns == nil {
		concerns = []string{}
	}

	if flagJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(detectResultJSON{Image: path, Concerns: concerns})
	}
	if len(concerns) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No concerns detected. Enter concerns manually with --concerns.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Detected concerns: %s\n", strings.Join(concerns, ", "))
	return nil
}

/*
Copyright © 2021 Edmond Cotterell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Daskott/tapcard/server/logger"
	"github.com/Daskott/tapcard/vcard"
	"github.com/spf13/cobra"
)

var (
	recordFileArg string
	outputFileArg string
	qrSizeArg     int
)

func init() {
	rootCmd.AddCommand(createVCardCmd())
}

func createVCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vcard",
		Short: "Convert cards between JSON, vCard & QR code",
	}

	cmd.AddCommand(
		createEncodeCmd(),
		createDecodeCmd(),
		createImportCmd(),
		createQRCmd(),
		createScanCmd(),
	)

	return cmd
}

func createEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Write a vCard for a JSON contact record",
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := readRecordFile(recordFileArg)
			if err != nil {
				return err
			}

			text, err := vcard.Encode(record)
			if err != nil {
				return formattedError("unable to encode %s: %v", recordFileArg, err)
			}

			return writeOutput(cmd, outputFileArg, []byte(text))
		},
	}

	cmd.Flags().StringVarP(&recordFileArg, "file", "f", "", "JSON file holding the contact record")
	cmd.Flags().StringVarP(&outputFileArg, "out", "o", "", "file to write the vCard to (default is stdout)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func createDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file.vcf>",
		Short: "Print the contact record of a vCard written by tapcard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return formattedError("unable to read %s: %v", args[0], err)
			}

			record, err := vcard.NewDecoder(logger.NewLogger()).Decode(string(data))
			if err != nil {
				return formattedError("unable to decode %s: %v", args[0], err)
			}

			return printJSON(cmd, record)
		},
	}
}

func createImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <book.vcf>",
		Short: "Print the contact records of an address book export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return formattedError("unable to read %s: %v", args[0], err)
			}
			defer file.Close()

			records, err := vcard.ImportCards(file)
			if err != nil {
				return formattedError("unable to import %s: %v", args[0], err)
			}

			return printJSON(cmd, records)
		},
	}
}

func createQRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Write a QR code (PNG) holding the vCard of a JSON contact record",
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := readRecordFile(recordFileArg)
			if err != nil {
				return err
			}

			text, err := vcard.Encode(record)
			if err != nil {
				return formattedError("unable to encode %s: %v", recordFileArg, err)
			}

			png, err := vcard.RenderQR(text, qrSizeArg)
			if err != nil {
				return formattedError("unable to render QR code: %v", err)
			}

			if err := os.WriteFile(outputFileArg, png, 0644); err != nil {
				return formattedError("unable to write %s: %v", outputFileArg, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "QR code written to %s\n", outputFileArg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&recordFileArg, "file", "f", "", "JSON file holding the contact record")
	cmd.Flags().StringVarP(&outputFileArg, "out", "o", "", "PNG file to write")
	cmd.Flags().IntVarP(&qrSizeArg, "size", "s", vcard.DefaultQRSize, "width & height of the QR code in pixels")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("out")

	return cmd
}

func createScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <card.png>",
		Short: "Print the text held by a QR code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return formattedError("unable to read %s: %v", args[0], err)
			}

			text, err := vcard.ScanQR(data)
			if err != nil {
				return formattedError("unable to scan %s: %v", args[0], err)
			}

			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func readRecordFile(path string) (*vcard.ContactRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, formattedError("unable to read %s: %v", path, err)
	}

	record := &vcard.ContactRecord{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, formattedError("invalid contact record in %s: %v", path, err)
	}

	return record, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	var out io.Writer = cmd.OutOrStdout()

	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return formattedError("unable to write %s: %v", path, err)
		}
		defer file.Close()
		out = file
	}

	_, err := out.Write(data)
	return err
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

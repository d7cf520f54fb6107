package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/smart-resume/internal/rendering"
	"github.com/spf13/cobra"
)

var (
	qrData       string
	qrLinkedIn   string
	qrOut        string
	qrConfigPath string
	qrModulePx   int
)

var qrCmd = &cobra.Command{
	Use:   "qr",
	Short: "Render a QR code PNG",
	Long: `Renders --data, or the profile URL built from --linkedin, as a QR code PNG.

A --linkedin value that is already an http(s) URL is encoded as is; anything
else is treated as a handle and appended to PROFILE_URL_BASE.`,
	RunE: runQR,
}

func init() {
	qrCmd.Flags().StringVarP(&qrData, "data", "d", "", "Text to encode")
	qrCmd.Flags().StringVar(&qrLinkedIn, "linkedin", "", "LinkedIn URL or handle to encode as a profile URL")
	qrCmd.Flags().StringVarP(&qrOut, "out", "o", "profile_qr.png", "Output PNG path")
	qrCmd.Flags().StringVar(&qrConfigPath, "config", "", "Path to a JSON config file layered over environment settings")
	qrCmd.Flags().IntVar(&qrModulePx, "px", 0, "Pixels per QR module (defaults to QR_MODULE_PX or 10)")

	qrCmd.MarkFlagsMutuallyExclusive("data", "linkedin")
	qrCmd.MarkFlagsOneRequired("data", "linkedin")

	rootCmd.AddCommand(qrCmd)
}

func runQR(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(qrConfigPath, false)
	if err != nil {
		return err
	}

	data := qrData
	if data == "" {
		data = rendering.ProfileURL(cfg.ProfileURLBase, qrLinkedIn)
	}
	modulePx := cfg.QRModulePixels
	if qrModulePx > 0 {
		modulePx = qrModulePx
	}

	png, err := rendering.EncodeQR(data, modulePx)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(qrOut); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(qrOut, png, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", qrOut, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes) for %s\n", qrOut, len(png), data)
	return nil
}

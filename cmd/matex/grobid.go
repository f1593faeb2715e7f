// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/matex/internal/container"
	"github.com/pdiddy/matex/internal/grobid"
)

const (
	defaultGrobidImage = "lfoppiano/grobid:0.8.0"
	grobidContainer    = "matex-grobid"
	grobidPort         = 8070
)

var grobidCmd = &cobra.Command{
	Use:   "grobid",
	Short: "Manage the local GROBID service container",
	Long: `Grobid starts, stops, and inspects the local GROBID container used by
the extract command. Docker is tried first, then podman.`,
}

var grobidStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the GROBID container",
	RunE:  runGrobidStart,
}

var grobidStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the GROBID container",
	RunE:  runGrobidStop,
}

var grobidStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the GROBID service is responding",
	RunE:  runGrobidStatus,
}

var grobidLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the GROBID container logs",
	RunE:  runGrobidLogs,
}

func init() {
	grobidStartCmd.Flags().String("image", "", "container image (default "+defaultGrobidImage+")")
	grobidStartCmd.Flags().Int("port", grobidPort, "host port to bind")

	grobidCmd.AddCommand(grobidStartCmd, grobidStopCmd, grobidStatusCmd, grobidLogsCmd)
	rootCmd.AddCommand(grobidCmd)
}

func runGrobidStart(cmd *cobra.Command, args []string) error {
	rt, err := container.DetectRuntime()
	if err != nil {
		return err
	}

	image, _ := cmd.Flags().GetString("image")
	if image == "" {
		image = viper.GetString("grobid.image")
	}
	if image == "" {
		image = defaultGrobidImage
	}

	if err := rt.ImageExists(image); err != nil {
		return fmt.Errorf("pull the image first (%s pull %s): %w", rt.Name(), image, err)
	}

	port, _ := cmd.Flags().GetInt("port")
	if err := rt.StartService(image, grobidContainer, port, grobidPort); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "started %s on port %d (%s)\n", grobidContainer, port, rt.Name())
	fmt.Fprintln(os.Stdout, "GROBID loads its models on first start; 'matex grobid status' reports readiness.")
	return nil
}

func runGrobidStop(cmd *cobra.Command, args []string) error {
	rt, err := container.DetectRuntime()
	if err != nil {
		return err
	}
	if err := rt.StopService(grobidContainer); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "stopped %s\n", grobidContainer)
	return nil
}

func runGrobidStatus(cmd *cobra.Command, args []string) error {
	client := grobid.New(grobidConfigFromFlags(cmd))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.IsAlive(ctx); err != nil {
		fmt.Fprintf(os.Stdout, "GROBID is not responding: %v\n", err)
		return nil
	}
	fmt.Fprintln(os.Stdout, "GROBID is up")
	return nil
}

func runGrobidLogs(cmd *cobra.Command, args []string) error {
	rt, err := container.DetectRuntime()
	if err != nil {
		return err
	}
	return rt.Logs(grobidContainer, os.Stdout)
}

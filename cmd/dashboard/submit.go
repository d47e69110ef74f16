package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/dispatch-board/internal/client"
	"github.com/imrishuroy/dispatch-board/internal/dispatch"
	"github.com/imrishuroy/dispatch-board/internal/validation"
)

var submitOpts struct {
	service, action, status string
	profile                 map[string]string
	highlights              []string
	recommendations         []string
	medications             []string
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Post a dispatch to the board",
	Example: `  dashboard submit --action ambulance --profile Name="A. Test" --profile Location="1 Main St"
  dashboard submit --action send_caretaker --highlight "fell at home"`,
	RunE: submit,
}

func init() {
	f := submitCmd.Flags()
	f.StringVar(&submitOpts.action, "action", dispatch.ActionAmbulance, "dispatch action")
	f.StringVar(&submitOpts.service, "service", "", "originating service (defaults to the API host)")
	f.StringVar(&submitOpts.status, "status", "", "status text")
	f.StringToStringVar(&submitOpts.profile, "profile", nil, "profile field, e.g. Name=\"A. Test\" (repeatable)")
	f.StringArrayVar(&submitOpts.highlights, "highlight", nil, "emergency highlight (repeatable)")
	f.StringArrayVar(&submitOpts.recommendations, "recommendation", nil, "recommended action (repeatable)")
	f.StringArrayVar(&submitOpts.medications, "medication", nil, "suggested medication (repeatable)")
	rootCmd.AddCommand(submitCmd)
}

func buildSubmission() (validation.CreateDispatchRequest, error) {
	req := validation.CreateDispatchRequest{
		Service:         submitOpts.service,
		Action:          submitOpts.action,
		Status:          submitOpts.status,
		Highlights:      submitOpts.highlights,
		Recommendations: submitOpts.recommendations,
		Medications:     submitOpts.medications,
	}
	if len(submitOpts.profile) > 0 {
		req.Profile = make(map[string]interface{}, len(submitOpts.profile))
		for k, v := range submitOpts.profile {
			req.Profile[k] = v
		}
	}
	if err := validation.New().Struct(req); err != nil {
		return req, fmt.Errorf("invalid submission: %w", err)
	}
	return req, nil
}

func submit(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	req, err := buildSubmission()
	if err != nil {
		return err
	}

	rec, err := client.New(cfg.Client.BaseURL, cfg.Client.RequestTimeout).Submit(ctx, req)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

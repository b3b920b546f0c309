package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"crewwatch/internal/journal"
	"crewwatch/internal/models"
	"crewwatch/internal/views"
)

func withClientTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), oneShotTimeout())
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the realtime API health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withClientTimeout(cmd)
			defer cancel()

			client, _ := newAPIClient()
			res := client.CheckHealth(ctx)
			return printResult(res, res.Result)
		},
	}
}

func newLocationCmd() *cobra.Command {
	var (
		update            models.LocationUpdate
		accuracy, heading float64
		battery           int
	)

	cmd := &cobra.Command{
		Use:   "location",
		Short: "Report a GPS fix for a crew",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("accuracy") {
				update.Accuracy = &accuracy
			}
			if cmd.Flags().Changed("heading") {
				update.Heading = &heading
			}
			if cmd.Flags().Changed("battery") {
				update.BatteryLevel = &battery
			}

			ctx, cancel := withClientTimeout(cmd)
			defer cancel()

			client, _ := newAPIClient()
			res := client.UpdateCrewLocation(ctx, update)
			return printResult(res, res.Result)
		},
	}

	cmd.Flags().StringVar(&update.CrewID, "crew", "", "Crew ID")
	cmd.Flags().Float64Var(&update.Latitude, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&update.Longitude, "lng", 0, "Longitude")
	cmd.Flags().Float64Var(&accuracy, "accuracy", 0, "GPS accuracy in meters")
	cmd.Flags().Float64Var(&heading, "heading", 0, "Heading in degrees")
	cmd.Flags().IntVar(&battery, "battery", 0, "Battery percentage")
	cmd.MarkFlagRequired("crew")
	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lng")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var crewID, status, reason, jobID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Change a crew's status",
		RunE: func(cmd *cobra.Command, args []string) error {
			update := models.StatusUpdate{CrewID: crewID, Status: models.CrewStatus(status)}
			if reason != "" {
				update.Reason = &reason
			}
			if jobID != "" {
				update.JobID = &jobID
			}

			ctx, cancel := withClientTimeout(cmd)
			defer cancel()

			client, _ := newAPIClient()
			res := client.UpdateCrewStatus(ctx, update)
			return printResult(res, res.Result)
		},
	}

	cmd.Flags().StringVar(&crewID, "crew", "", "Crew ID")
	cmd.Flags().StringVar(&status, "status", "", "available, assigned, en_route, on_site, on_break or offline")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason for the change")
	cmd.Flags().StringVar(&jobID, "job", "", "Related job ID")
	cmd.MarkFlagRequired("crew")
	cmd.MarkFlagRequired("status")
	return cmd
}

func newStatusHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status-history CREW_ID",
		Short: "List a crew's recent status changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withClientTimeout(cmd)
			defer cancel()

			client, _ := newAPIClient()
			res := client.GetCrewStatusHistory(ctx, args[0], limit)
			return printResult(res, res.Result)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries")
	return cmd
}

func newJobUpdateCmd() *cobra.Command {
	var (
		update   models.JobUpdate
		status   string
		from     string
		progress int
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "job-update",
		Short: "Report progress on a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			update.Status = models.JobStatus(status)
			if from != "" && !models.CanTransition(models.JobStatus(from), update.Status) {
				return fmt.Errorf("job cannot move from %s to %s", from, status)
			}
			if cmd.Flags().Changed("progress") {
				update.Progress = &progress
			}
			if notes != "" {
				update.Notes = &notes
			}

			ctx, cancel := withClientTimeout(cmd)
			defer cancel()

			client, _ := newAPIClient()
			res := client.UpdateJob(ctx, update)
			return printResult(res, res.Result)
		},
	}

	cmd.Flags().StringVar(&update.JobID, "job", "", "Job ID")
	cmd.Flags().StringVar(&status, "status", "", "New job status")
	cmd.Flags().StringVar(&from, "from", "", "Current status, checked against the job lifecycle before sending")
	cmd.Flags().IntVar(&progress, "progress", 0, "Progress percentage")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().StringSliceVar(&update.PhotoURLs, "photo", nil, "Photo URL (repeatable)")
	cmd.MarkFlagRequired("job")
	cmd.MarkFlagRequired("status")
	return cmd
}

func newJobsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List active jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withClientTimeout(cmd)
			defer cancel()

			client, _ := newAPIClient()
			res := client.GetActiveJobs(ctx)
			if res.Success {
				for _, j := range res.Jobs {
					fmt.Printf("%-12s %-12s %-24s %s\n", j.JobNumber, j.Status, j.Service.Name, views.FormatDuration(j.EstimatedDuration))
				}
				return nil
			}
			return printResult(res, res.Result)
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withClientTimeout(cmd)
			defer cancel()

			client, _ := newAPIClient()
			res := client.GetDashboardStats(ctx)
			return printResult(res, res.Result)
		},
	}
}

func newSendCmd() *cobra.Command {
	var msg models.OutgoingMessage
	var senderType, recipientType, messageType, priority string

	cmd := &cobra.Command{
		Use:   "send CONTENT",
		Short: "Send a message to a crew, customer or admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg.Content = args[0]
			msg.SenderType = models.ParticipantType(senderType)
			msg.RecipientType = models.ParticipantType(recipientType)
			msg.MessageType = models.MessageType(messageType)
			msg.Priority = models.MessagePriority(priority)

			ctx, cancel := withClientTimeout(cmd)
			defer cancel()

			client, _ := newAPIClient()
			res := client.SendMessage(ctx, msg)
			return printResult(res, res.Result)
		},
	}

	cmd.Flags().StringVar(&senderType, "sender-type", string(models.ParticipantAdmin), "Sender type")
	cmd.Flags().StringVar(&msg.SenderID, "sender", "", "Sender ID")
	cmd.Flags().StringVar(&recipientType, "to-type", string(models.ParticipantCrew), "Recipient type")
	cmd.Flags().StringVar(&msg.RecipientID, "to", "", "Recipient ID")
	cmd.Flags().StringVar(&messageType, "type", string(models.MessageTypeText), "Message type")
	cmd.Flags().StringVar(&priority, "priority", string(models.PriorityNormal), "low, normal, high or urgent")
	cmd.MarkFlagRequired("to")
	return cmd
}

func newMessagesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "messages RECIPIENT_TYPE RECIPIENT_ID",
		Short: "List messages for a recipient",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withClientTimeout(cmd)
			defer cancel()

			client, _ := newAPIClient()
			res := client.GetMessages(ctx, models.ParticipantType(args[0]), args[1], limit)
			return printResult(res, res.Result)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum messages")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent poll ticks from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Journal.DatabaseURL == "" {
				return errors.New("DATABASE_URL is not set")
			}

			db, err := journal.Connect(cfg.Journal.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := journal.Migrate(db); err != nil {
				return err
			}

			records, err := journal.New(db).Recent(limit)
			if err != nil {
				return err
			}
			return printJSON(records)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum ticks")
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/visibility"

	"github.com/spf13/cobra"
)

type filterOptions struct {
	role     string
	ref      string
	view     string
	timezone string
	filters  domain.FilterState
}

func newFilterCmd() *cobra.Command {
	var opts filterOptions
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Apply role visibility and list filters to a JSON collection",
		Long: `Reads a JSON array of account or activity records from stdin and
writes the subset visible to the given user, in view order, to stdout.`,
		Example: `  bfa filter --role "Territory Sales Associate" --ref A --view accounts < accounts.json
  bfa filter --role SuperAdmin --ref ADMIN --view calls --start 2024-03-01 --end 2024-03-31 < activities.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.role, "role", "", "role of the viewing user")
	f.StringVar(&opts.ref, "ref", "", "reference id of the viewing user")
	f.StringVar(&opts.view, "view", "accounts", "accounts|activities|calls|callbacks|scheduled")
	f.StringVar(&opts.timezone, "tz", "UTC", "IANA time zone for calendar-day comparisons")
	f.StringVar(&opts.filters.SearchTerm, "q", "", "search term")
	f.StringVar(&opts.filters.ClientType, "client-type", "", `client type, "null" for records without one`)
	f.StringVar(&opts.filters.Status, "status", "", "activity status")
	f.StringVar(&opts.filters.StartDate, "start", "", "inclusive start date")
	f.StringVar(&opts.filters.EndDate, "end", "", "inclusive end date")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func runFilter(in io.Reader, out io.Writer, opts filterOptions) error {
	role := domain.ParseRole(opts.role)
	if role == domain.RoleUnknown {
		return fmt.Errorf("unknown role %q", opts.role)
	}
	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("invalid --tz: %w", err)
	}
	profile := &domain.UserProfile{ReferenceID: opts.ref, Role: role}

	dec := json.NewDecoder(in)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	switch strings.ToLower(opts.view) {
	case "accounts":
		var records []domain.AccountRecord
		if err := dec.Decode(&records); err != nil {
			return fmt.Errorf("decode accounts: %w", err)
		}
		for i := range records {
			records[i] = records[i].In(loc)
		}
		return enc.Encode(nonNil(visibility.Apply(records, profile, opts.filters, visibility.AccountsView.In(loc))))
	case "activities", "calls", "callbacks", "scheduled":
		var records []domain.ActivityRecord
		if err := dec.Decode(&records); err != nil {
			return fmt.Errorf("decode activities: %w", err)
		}
		for i := range records {
			records[i] = records[i].In(loc)
		}
		view := activityViews[strings.ToLower(opts.view)].In(loc)
		return enc.Encode(nonNil(visibility.Apply(records, profile, opts.filters, view)))
	default:
		return fmt.Errorf("unknown view %q", opts.view)
	}
}

var activityViews = map[string]visibility.View[domain.ActivityRecord]{
	"activities": visibility.ActivitiesView,
	"calls":      visibility.CallsView,
	"callbacks":  visibility.CallbacksView,
	"scheduled":  visibility.ScheduledView,
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

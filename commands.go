package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kotrzina/knue-meals/pkg/menu"
	"github.com/kotrzina/knue-meals/pkg/utils"
	"github.com/kotrzina/knue-meals/pkg/web"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "knue-meals",
		Short: "Cafeteria menus of Korea National University of Education",
		Long: `knue-meals scrapes the KNUE cafeteria pages and serves the menus as JSON.

Examples:
  # Serve the HTTP API (default)
  knue-meals serve

  # Print the menu of the Sado cafeteria for a day
  knue-meals sado --date 2025-03-01 --meal 중식

  # Print the staff cafeteria menu for Monday
  knue-meals staff --day mon`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe()
		},
	}

	root.AddCommand(newServeCmd(), newSadoCmd(), newStaffCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	a, err := newApp()
	if err != nil {
		return err
	}

	hr := web.NewHandlerRepository(a.service, a.config, a.monitor, a.logger)
	return web.StartServer(web.NewRouter(hr), a.config.Port, a.logger)
}

func newSadoCmd() *cobra.Command {
	var date, meal string
	var text bool

	cmd := &cobra.Command{
		Use:   "sado",
		Short: "Print the Sado cafeteria menu for one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day := utils.Today()
			if date != "" {
				parsed, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("--date must look like 2025-03-01: %w", err)
				}
				day = parsed
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			a.logger.SetOutput(cmd.ErrOrStderr())

			sched, err := a.service.DateMenu(cmd.Context(), menu.DateRequest{
				Year:  day.Year(),
				Month: int(day.Month()),
				Day:   day.Day(),
				Meal:  meal,
			})
			if err != nil {
				return err
			}

			if text {
				printSchedule(cmd.OutOrStdout(), sched, meal)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), web.DateOutput(sched, meal))
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to look up as YYYY-MM-DD (default today in Seoul)")
	cmd.Flags().StringVar(&meal, "meal", "", "only print one meal: 조식, 중식 or 석식")
	cmd.Flags().BoolVar(&text, "text", false, "print a plain listing instead of JSON")
	return cmd
}

func newStaffCmd() *cobra.Command {
	var day string
	var text bool

	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Print the staff cafeteria menu for one weekday",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if day == "" {
				day = utils.WeekdayToken(utils.Today())
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			a.logger.SetOutput(cmd.ErrOrStderr())

			day = strings.ToLower(day)
			sched, err := a.service.WeekdayMenu(cmd.Context(), menu.WeekdayRequest{Day: day})
			if err != nil {
				return err
			}

			if text {
				printSchedule(cmd.OutOrStdout(), sched, "")
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), web.StaffOutput(sched, day))
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "weekday token mon..sun (default today in Seoul)")
	cmd.Flags().BoolVar(&text, "text", false, "print a plain listing instead of JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSchedule(w io.Writer, sched *menu.Schedule, only string) {
	header := sched.Label
	if sched.Date != nil {
		header += " " + utils.FormatDate(*sched.Date)
	}
	fmt.Fprintln(w, header)

	for _, slot := range sched.Slots {
		if only != "" && slot != only {
			continue
		}
		fmt.Fprintf(w, "[%s]\n", slot)
		items := sched.Meals[slot]
		if len(items) == 0 {
			fmt.Fprintln(w, "  -")
		}
		for _, item := range items {
			fmt.Fprintf(w, "  %s\n", item)
		}
	}

	if sched.Note != "" {
		fmt.Fprintln(w, sched.Note)
	}
}

package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func SetupCommands(a *App) *cobra.Command {
	// root command
	rootCmd := &cobra.Command{
		Use:           "studysched",
		Short:         "A personal class and exam schedule",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(a.out)

	// command for showing the weekly schedule followed by exams
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the weekly schedule",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.ShowSchedule()
		},
	}

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(subjectCommand(a))
	rootCmd.AddCommand(examCommand(a))
	rootCmd.AddCommand(importCommand(a))
	rootCmd.AddCommand(exportCommand(a))

	return rootCmd
}

func subjectCommand(a *App) *cobra.Command {
	subjectCmd := &cobra.Command{
		Use:   "subject",
		Short: "Manage class subjects",
	}

	var name, teacher, clock string
	var days []string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.AddSubject(name, teacher, clock, days)
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "subject name")
	addCmd.Flags().StringVar(&teacher, "teacher", "", "teacher name")
	addCmd.Flags().StringVar(&clock, "time", "", "start time (HH:MM)")
	addCmd.Flags().StringSliceVar(&days, "day", nil, "weekday the subject is held on, repeatable")
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("time")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List subjects",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.ListSubjects()
		},
	}

	// command for removing a subject, picked from a menu when no id is given
	rmCmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Remove a subject",
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			var ids []string
			for _, s := range a.store.Subjects() {
				ids = append(ids, s.ID+"\t"+s.Name)
			}
			return ids, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) > 0 {
				id = args[0]
			}
			return a.RemoveSubject(id)
		},
	}

	subjectCmd.AddCommand(addCmd, listCmd, rmCmd)
	return subjectCmd
}

func examCommand(a *App) *cobra.Command {
	examCmd := &cobra.Command{
		Use:   "exam",
		Short: "Manage exams",
	}

	var name, date, clock, location string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an exam",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.AddExam(name, date, clock, location)
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "exam name")
	addCmd.Flags().StringVar(&date, "date", "", "exam date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&clock, "time", "", "start time (HH:MM)")
	addCmd.Flags().StringVar(&location, "location", "", "exam room or building")
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("date")
	addCmd.MarkFlagRequired("time")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List exams",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.ListExams()
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Remove an exam",
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			var ids []string
			for _, e := range a.store.Exams() {
				ids = append(ids, e.ID+"\t"+e.Name)
			}
			return ids, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) > 0 {
				id = args[0]
			}
			return a.RemoveExam(id)
		},
	}

	examCmd.AddCommand(addCmd, listCmd, rmCmd)
	return examCmd
}

// command for importing subjects from a timetable image or recognized text
func importCommand(a *App) *cobra.Command {
	var textPath string

	importCmd := &cobra.Command{
		Use:   "import [image]",
		Short: "Import subjects from a timetable image",
		Args: func(cmd *cobra.Command, args []string) error {
			if textPath != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if textPath != "" {
				err = a.ImportText(textPath)
			} else {
				err = a.ImportImage(cmd.Context(), args[0])
			}
			// an empty result was already reported to the user
			if errors.Is(err, ErrNoMatchFound) {
				return nil
			}
			return err
		},
	}
	importCmd.Flags().StringVar(&textPath, "text", "", "import already recognized text from a file (- for stdin)")

	return importCmd
}

func exportCommand(a *App) *cobra.Command {
	var format, output string

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the schedule as a printable document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Export(format, output)
		},
	}
	exportCmd.Flags().StringVar(&format, "format", "pdf", "document format (pdf or xlsx)")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "output file")

	return exportCmd
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pubtemplate/pkg/composer"
	"github.com/goliatone/go-pubtemplate/pkg/model"
	pkgopenapi "github.com/goliatone/go-pubtemplate/pkg/openapi"
	"github.com/goliatone/go-pubtemplate/pkg/preview"
	"github.com/goliatone/go-pubtemplate/pkg/render"
	"github.com/goliatone/go-pubtemplate/pkg/tui"
)

func newPresetsCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the preset fields offered by the composer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := app.catalog()
			if err != nil {
				return err
			}
			previewer, err := app.previewer()
			if err != nil {
				return err
			}
			_, err = previewer.Presets(catalog, cmd.OutOrStdout())
			return err
		},
	}
}

func newListCmd(app *cli) *cobra.Command {
	var task int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the templates of a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := app.taskID(task)
			if err != nil {
				return err
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			templates, err := client.ListTemplates(cmd.Context(), taskID)
			if err != nil {
				return err
			}
			previewer, err := app.previewer()
			if err != nil {
				return err
			}
			_, err = previewer.List(taskID, templates, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().Int64Var(&task, "task", 0, "Task id (defaults to task.default_id)")
	return cmd
}

func newShowCmd(app *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			tpl, err := client.GetTemplate(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tpl)
			}
			previewer, err := app.previewer()
			if err != nil {
				return err
			}
			_, err = previewer.Draft(preview.NewDraftData(tpl, -1, ""), cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the template document as JSON")
	return cmd
}

func newComposeCmd(app *cli) *cobra.Command {
	var (
		task int64
		from int64
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Create or edit a template interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := app.taskID(task)
			if err != nil {
				return err
			}
			client, err := app.client()
			if err != nil {
				return err
			}

			options := []composer.Option{
				composer.WithPersister(client),
				composer.WithTaskID(taskID),
				composer.WithLogger(app.logger.Named("composer")),
			}
			validator, err := app.validator(ctx)
			if err != nil {
				return err
			}
			if validator != nil {
				options = append(options, composer.WithValidator(validator))
			}

			var c *composer.Composer
			if from > 0 {
				tpl, err := client.GetTemplate(ctx, from)
				if err != nil {
					return err
				}
				c = composer.FromTemplate(tpl, options...)
			} else {
				c = composer.New(options...)
			}

			catalog, err := app.catalog()
			if err != nil {
				return err
			}
			previewer, err := app.previewer()
			if err != nil {
				return err
			}
			renderer, err := app.renderer()
			if err != nil {
				return err
			}
			driver := app.driver
			if driver == nil {
				driver = tui.NewSurveyDriver(cmd.OutOrStdout())
			}

			session, err := tui.NewSession(c,
				tui.WithPromptDriver(driver),
				tui.WithCatalog(catalog),
				tui.WithPreviewer(previewer),
				tui.WithRenderer(renderer),
				tui.WithLogger(app.logger.Named("tui")),
			)
			if err != nil {
				return err
			}
			app.logger.Debug("compose: session started",
				zap.String("session", session.ID()), zap.Int64("task", taskID), zap.Int64("from", from))

			if err := session.Run(ctx); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
					return nil
				}
				return err
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&task, "task", 0, "Task id (defaults to task.default_id)")
	cmd.Flags().Int64Var(&from, "from", 0, "Id of a stored template to edit")
	return cmd
}

// sampleFile is the values document accepted by the render command.
type sampleFile struct {
	Summary   string            `yaml:"summary"`
	Serial    string            `yaml:"serial"`
	Extracted map[string]string `yaml:"extracted"`
}

func newRenderCmd(app *cli) *cobra.Command {
	var (
		valuesPath string
		showPrompt bool
	)
	cmd := &cobra.Command{
		Use:   "render <template.json>",
		Short: "Render a template file with sample values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := readTemplateFile(args[0])
			if err != nil {
				return err
			}
			if showPrompt {
				prompt := render.ExtractionPrompt(tpl)
				if prompt == "" {
					prompt = "No field needs extraction."
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), prompt)
				return err
			}

			var sample sampleFile
			if valuesPath != "" {
				data, err := os.ReadFile(valuesPath)
				if err != nil {
					return fmt.Errorf("read values: %w", err)
				}
				if err := yaml.Unmarshal(data, &sample); err != nil {
					return fmt.Errorf("parse values %s: %w", valuesPath, err)
				}
			}

			renderer, err := app.renderer()
			if err != nil {
				return err
			}
			values := render.NewResolver().Resolve(tpl, render.Inputs{
				Summary:   sample.Summary,
				Extracted: sample.Extracted,
				Serial:    sample.Serial,
			})
			out := renderer.Render(tpl, render.RenderOptions{Values: values, Fallback: sample.Summary})
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&valuesPath, "values", "", "YAML file with summary, serial and extracted values")
	cmd.Flags().BoolVar(&showPrompt, "prompt", false, "Print the extraction prompt instead of rendering")
	return cmd
}

func newValidateCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <template.json>",
		Short: "Check a template file against the template rules and the API document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := readTemplateFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var lines []string
			for _, problem := range model.TemplateProblems(tpl) {
				lines = append(lines, problem.String())
			}

			validator, err := app.validator(cmd.Context())
			if err != nil {
				return err
			}
			if validator != nil {
				if err := validator.ValidateTemplate(cmd.Context(), tpl); err != nil {
					var invalid *pkgopenapi.ValidationError
					if !errors.As(err, &invalid) {
						return err
					}
					for _, issue := range invalid.Issues {
						lines = append(lines, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
					}
				}
			}

			if len(lines) == 0 {
				_, err := fmt.Fprintf(out, "%s: ok\n", args[0])
				return err
			}
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return fmt.Errorf("%s: %d problem(s)", args[0], len(lines))
		},
	}
}

func newDocCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "doc",
		Short: "List the operations of the templates API document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			validator, err := app.validator(cmd.Context())
			if err != nil {
				return err
			}
			if validator == nil {
				return errors.New("validation is disabled in the configuration")
			}
			for _, op := range validator.Operations() {
				line := fmt.Sprintf("%-6s %-28s %s", op.Method, op.Path, op.ID)
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(line, " ")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newDeleteCmd(app *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				driver := app.driver
				if driver == nil {
					driver = tui.NewSurveyDriver(cmd.OutOrStdout())
				}
				ok, err := driver.Confirm(cmd.Context(), tui.ConfirmConfig{
					Message: fmt.Sprintf("Delete template #%d?", id),
				})
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			if err := client.DeleteTemplate(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted template #%d.\n", id)
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid template id %q", raw)
	}
	return id, nil
}

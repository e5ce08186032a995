package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mcat-prep/backend/internal/database"
	"github.com/mcat-prep/backend/internal/generator"
	"github.com/mcat-prep/backend/internal/models"
	"github.com/mcat-prep/backend/internal/questions"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a batch of questions and print it as JSON",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().String("concept", "", "MCAT concept to write questions about")
	generateCmd.Flags().Int("count", 5, "Number of questions (1-20)")
	generateCmd.Flags().Bool("save", false, "Persist the batch to the database")
	generateCmd.Flags().String("provider", "", "LLM provider (overrides LLM_PROVIDER)")
	_ = generateCmd.MarkFlagRequired("concept")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, log := loadConfig(cmd)

	concept, _ := cmd.Flags().GetString("concept")
	count, _ := cmd.Flags().GetInt("count")
	save, _ := cmd.Flags().GetBool("save")
	if p, _ := cmd.Flags().GetString("provider"); p != "" {
		cfg.LLM.Provider = strings.ToLower(p)
	}

	query := models.UserQuery{Concept: strings.TrimSpace(concept), NumQuestions: count}
	if err := validateQuery(query); err != nil {
		return err
	}

	llm, err := generator.NewClient(cmd.Context(), cfg.LLM)
	if err != nil {
		return err
	}
	gen := generator.NewGenerator(llm, generator.Options{
		Provider: cfg.LLM.Provider,
		Timeout:  cfg.LLM.Timeout,
		Logger:   log,
	})

	var store questions.QuestionStore
	if save {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			return err
		}
		store = questions.NewStore(db)
	}

	service := questions.NewService(store, gen, log)
	batch, err := service.GenerateQuestions(cmd.Context(), query)
	if err != nil {
		log.WithError(err).Error("generation failed")
		return errors.New(generator.UserMessage(err))
	}

	if err := printJSON(cmd, batch); err != nil {
		return err
	}
	if save && len(batch) > 0 && batch[0].QueryID != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "saved as query %s\n", *batch[0].QueryID)
	}
	return nil
}

var validate = validator.New()

// validateQuery applies the request rules of the HTTP API and reports them in
// terms of command-line flags.
func validateQuery(q models.UserQuery) error {
	err := validate.Struct(q)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := verrs[0]
	if fe.Field() == "NumQuestions" {
		return fmt.Errorf("--count must be between 1 and 20, got %d", q.NumQuestions)
	}
	switch fe.Tag() {
	case "required":
		return errors.New("--concept must not be blank")
	case "max":
		return fmt.Errorf("--concept must be at most %s characters", fe.Param())
	default:
		return errors.New("--concept is invalid")
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

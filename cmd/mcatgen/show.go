package main

import (
	"github.com/google/uuid"
	"github.com/mcat-prep/backend/internal/database"
	"github.com/mcat-prep/backend/internal/questions"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <query-id>",
	Short: "Print the questions saved for a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := uuid.Parse(args[0]); err != nil {
			return questions.ErrQueryNotFound
		}

		cfg, log := loadConfig(cmd)

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		service := questions.NewService(questions.NewStore(db), nil, log)
		batch, err := service.GetQueryQuestions(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, batch)
	},
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"crucible/internal/config"
	"crucible/internal/database"
	"crucible/internal/models"

	"github.com/google/uuid"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: import-questions <contest_slug> <question_folder_path>")
		fmt.Println("Example: import-questions spring-cup-2026-1a2b3c4d ./data/coffee")
		os.Exit(1)
	}
	contestSlug, questionPath := os.Args[1], os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewGormConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run auto-migration: %v", err)
	}

	if err := importQuestion(context.Background(), db, contestSlug, questionPath); err != nil {
		log.Fatalf("Failed to import question: %v", err)
	}
	fmt.Printf("Successfully imported question from %s\n", questionPath)
}

func importQuestion(ctx context.Context, db *database.GormDB, contestSlug, questionPath string) error {
	metadata, files, err := loadQuestionFolder(questionPath)
	if err != nil {
		return err
	}

	contestRepo := database.NewContestRepository(db)
	questionRepo := database.NewQuestionRepository(db)
	testCaseRepo := database.NewTestCaseRepository(db)

	contest, err := contestRepo.GetContestBySlug(ctx, contestSlug)
	if err != nil {
		return fmt.Errorf("failed to look up contest: %w", err)
	}
	if contest == nil {
		return fmt.Errorf("no contest with slug %q", contestSlug)
	}

	question := &models.Question{
		ID:          uuid.New(),
		ContestID:   contest.ID,
		CreatorID:   contest.CreatorID,
		Title:       metadata.Title,
		Description: metadata.Description,
		Points:      metadata.Points,
		IsPublic:    metadata.IsPublic,
	}
	if err := questionRepo.CreateQuestion(ctx, question); err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	fmt.Printf("Created question: %s (ID: %s) in contest %s\n", question.Title, question.ID, contest.Name)

	testCases := make([]*models.TestCase, len(files))
	for i, f := range files {
		testCases[i] = &models.TestCase{
			ID:             uuid.New(),
			QuestionID:     question.ID,
			Input:          f.Input,
			ExpectedOutput: f.ExpectedOutput,
			IsSample:       f.IsSample,
			TestOrder:      f.TestOrder,
		}
	}
	if err := testCaseRepo.BatchCreateTestCases(ctx, testCases); err != nil {
		return fmt.Errorf("failed to create test cases: %w", err)
	}

	count, err := testCaseRepo.CountTestCasesByQuestion(ctx, question.ID)
	if err != nil {
		return fmt.Errorf("failed to count test cases: %w", err)
	}
	fmt.Printf("Question %s now has %d test cases\n", question.Title, count)
	return nil
}

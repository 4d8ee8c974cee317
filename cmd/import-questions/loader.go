package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type questionMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int32  `json:"points"`
	IsPublic    bool   `json:"is_public"`
}

type testCaseFile struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	IsSample       bool   `json:"is_sample"`
	TestOrder      int32  `json:"test_order"`
}

// loadQuestionFolder reads metadata.json and test_cases.json from dir. Test
// cases come back in test_order.
func loadQuestionFolder(dir string) (*questionMetadata, []testCaseFile, error) {
	var metadata questionMetadata
	if err := readJSON(filepath.Join(dir, "metadata.json"), &metadata); err != nil {
		return nil, nil, err
	}
	if metadata.Title == "" {
		return nil, nil, fmt.Errorf("metadata.json: title is required")
	}
	if metadata.Points < 0 {
		return nil, nil, fmt.Errorf("metadata.json: points must not be negative")
	}

	var testCases []testCaseFile
	if err := readJSON(filepath.Join(dir, "test_cases.json"), &testCases); err != nil {
		return nil, nil, err
	}
	sort.SliceStable(testCases, func(i, j int) bool {
		return testCases[i].TestOrder < testCases[j].TestOrder
	})

	return &metadata, testCases, nil
}

func readJSON(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// internal/store/store.go
// Package store reads and writes the harness CSV tables using explicit record
// types. Parsing happens once at this boundary; the rest of the code operates
// on structured values.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/mwiater/krino/internal/logging"
)

var promptColumns = []string{"prompt_id", "prompt_text", "category", "difficulty", "should_refuse", "expected_format"}

var runColumns = []string{"run_id", "prompt_id", "model_name", "system_prompt_version", "temperature", "timestamp", "latency_ms", "output_len_chars", "output_text"}

var scoreColumns = []string{"run_id", "format_followed", "refusal_present", "refusal_correct", "mentions_uncertainty", "contains_policy_risk_flag", "citations_present"}

var ratingColumns = []string{"run_id", "helpfulness_1_5", "correctness_1_5", "clarity_1_5", "compliance_1_5", "hallucination_flag", "notes"}

// LoadPrompts reads the prompts table.
func LoadPrompts(path string) ([]Prompt, error) {
	rows, index, err := readTable(path, promptColumns)
	if err != nil {
		return nil, err
	}

	prompts := make([]Prompt, 0, len(rows))
	for i, row := range rows {
		difficulty, err := strconv.Atoi(row[index["difficulty"]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid difficulty %q", path, i+2, row[index["difficulty"]])
		}
		prompts = append(prompts, Prompt{
			PromptID:       row[index["prompt_id"]],
			PromptText:     row[index["prompt_text"]],
			Category:       row[index["category"]],
			Difficulty:     difficulty,
			ShouldRefuse:   row[index["should_refuse"]] == "1",
			ExpectedFormat: row[index["expected_format"]],
		})
	}
	return prompts, nil
}

// LoadRuns reads the runs table.
func LoadRuns(path string) ([]Run, error) {
	rows, index, err := readTable(path, runColumns)
	if err != nil {
		return nil, err
	}

	runs := make([]Run, 0, len(rows))
	for i, row := range rows {
		runID, err := strconv.Atoi(row[index["run_id"]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid run_id %q", path, i+2, row[index["run_id"]])
		}
		temperature, err := strconv.ParseFloat(row[index["temperature"]], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid temperature %q", path, i+2, row[index["temperature"]])
		}
		latency, err := strconv.Atoi(row[index["latency_ms"]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid latency_ms %q", path, i+2, row[index["latency_ms"]])
		}
		outputLen, err := strconv.Atoi(row[index["output_len_chars"]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid output_len_chars %q", path, i+2, row[index["output_len_chars"]])
		}
		runs = append(runs, Run{
			RunID:               runID,
			PromptID:            row[index["prompt_id"]],
			ModelName:           row[index["model_name"]],
			SystemPromptVersion: row[index["system_prompt_version"]],
			Temperature:         temperature,
			Timestamp:           row[index["timestamp"]],
			LatencyMs:           latency,
			OutputLenChars:      outputLen,
			OutputText:          row[index["output_text"]],
		})
	}
	return runs, nil
}

// LoadScores reads the auto-scores table.
func LoadScores(path string) ([]Score, error) {
	rows, index, err := readTable(path, scoreColumns)
	if err != nil {
		return nil, err
	}

	scores := make([]Score, 0, len(rows))
	for i, row := range rows {
		values := make(map[string]int, len(scoreColumns))
		for _, col := range scoreColumns {
			v, err := strconv.Atoi(row[index[col]])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: invalid %s %q", path, i+2, col, row[index[col]])
			}
			values[col] = v
		}
		scores = append(scores, Score{
			RunID:                  values["run_id"],
			FormatFollowed:         values["format_followed"],
			RefusalPresent:         values["refusal_present"],
			RefusalCorrect:         values["refusal_correct"],
			MentionsUncertainty:    values["mentions_uncertainty"],
			ContainsPolicyRiskFlag: values["contains_policy_risk_flag"],
			CitationsPresent:       values["citations_present"],
		})
	}
	return scores, nil
}

// WriteRuns writes the runs table. An empty run set logs a warning and leaves
// any existing file untouched.
func WriteRuns(path string, runs []Run) error {
	if len(runs) == 0 {
		logging.LogEvent("warning: no runs to write, leaving %s untouched", path)
		return nil
	}

	records := make([][]string, 0, len(runs))
	for _, run := range runs {
		records = append(records, []string{
			strconv.Itoa(run.RunID),
			run.PromptID,
			run.ModelName,
			run.SystemPromptVersion,
			strconv.FormatFloat(run.Temperature, 'g', -1, 64),
			run.Timestamp,
			strconv.Itoa(run.LatencyMs),
			strconv.Itoa(run.OutputLenChars),
			run.OutputText,
		})
	}
	return writeTable(path, runColumns, records)
}

// WriteScores writes the auto-scores table. An empty score set logs a warning
// and leaves any existing file untouched.
func WriteScores(path string, scores []Score) error {
	if len(scores) == 0 {
		logging.LogEvent("warning: no scores to write, leaving %s untouched", path)
		return nil
	}

	records := make([][]string, 0, len(scores))
	for _, s := range scores {
		records = append(records, []string{
			strconv.Itoa(s.RunID),
			strconv.Itoa(s.FormatFollowed),
			strconv.Itoa(s.RefusalPresent),
			strconv.Itoa(s.RefusalCorrect),
			strconv.Itoa(s.MentionsUncertainty),
			strconv.Itoa(s.ContainsPolicyRiskFlag),
			strconv.Itoa(s.CitationsPresent),
		})
	}
	return writeTable(path, scoreColumns, records)
}

// WriteRatingTemplate writes the human-ratings template with the rating
// columns left empty for manual completion. An empty sample logs a warning
// and leaves any existing file untouched.
func WriteRatingTemplate(path string, runIDs []int) error {
	if len(runIDs) == 0 {
		logging.LogEvent("warning: empty sample, leaving %s untouched", path)
		return nil
	}

	records := make([][]string, 0, len(runIDs))
	for _, id := range runIDs {
		records = append(records, []string{strconv.Itoa(id), "", "", "", "", "", ""})
	}
	return writeTable(path, ratingColumns, records)
}

// readTable loads a CSV file and maps the required column names to their
// positions in the header row.
func readTable(path string, required []string) ([][]string, map[string]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%s: missing header row", path)
	}

	index := make(map[string]int, len(all[0]))
	for i, name := range all[0] {
		index[name] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("%s: missing column %q", path, col)
		}
	}
	return all[1:], index, nil
}

func writeTable(path string, header []string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

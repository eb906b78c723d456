package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const maxSteps = 50

var (
	freeText  string
	markRead  int
	searchTop int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Answer every question, search, mark books as read and ask for recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScript()
	},
}

func init() {
	runCmd.Flags().StringVar(&freeText, "text", "Glæpasögur og sögulegar skáldsögur", "answer used for free-text questions")
	runCmd.Flags().IntVar(&markRead, "read", 2, "number of candidates to mark as already read")
	runCmd.Flags().IntVar(&searchTop, "top-k", 10, "number of candidates to retrieve")
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type question struct {
	Id      int      `json:"id"`
	Key     string   `json:"key"`
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

type sessionView struct {
	Id         string   `json:"id"`
	State      string   `json:"state"`
	Step       int      `json:"step"`
	Total      int      `json:"total"`
	IsComplete bool     `json:"is_complete"`
	Current    question `json:"current"`
}

type transitionView struct {
	Transition string       `json:"transition"`
	Session    *sessionView `json:"session"`
	Expansion  *struct {
		Added    []question `json:"added"`
		Outcome  string     `json:"outcome"`
		Fallback bool       `json:"fallback"`
	} `json:"expansion"`
}

type candidate struct {
	Id              string  `json:"id"`
	Title           string  `json:"title"`
	SimilarityScore float64 `json:"similarity_score"`
	Rationale       string  `json:"rationale"`
}

func runScript() error {
	color.Cyan("🚀 Starting book discovery simulation against %s\n", baseURL)

	var sess sessionView
	if err := call(http.MethodPost, "/survey/v1/sessions", nil, &sess); err != nil {
		return err
	}
	color.Green("Session created: %s (%d questions)", sess.Id, sess.Total)

	for i := 0; i < maxSteps && !sess.IsComplete; i++ {
		q := sess.Current
		answer := freeText
		if len(q.Options) > 0 {
			answer = q.Options[0]
		}
		color.Yellow("\n[%d/%d] %s", sess.Step+1, sess.Total, q.Text)
		fmt.Printf("  → %s\n", answer)

		path := fmt.Sprintf("/survey/v1/sessions/%s/answers/%d", sess.Id, q.Id)
		if err := call(http.MethodPut, path, map[string]string{"value": answer}, nil); err != nil {
			return err
		}

		var tr transitionView
		if err := call(http.MethodPost, "/survey/v1/sessions/"+sess.Id+"/advance", nil, &tr); err != nil {
			return err
		}
		if tr.Expansion != nil {
			color.Magenta("  + %d follow-up questions (outcome=%s, fallback=%t)", len(tr.Expansion.Added), tr.Expansion.Outcome, tr.Expansion.Fallback)
		}
		if tr.Session != nil {
			sess = *tr.Session
		}
	}
	if !sess.IsComplete {
		return fmt.Errorf("survey did not complete within %d steps", maxSteps)
	}
	color.Green("\nSurvey completed")

	var desc struct {
		Description string `json:"description"`
		Available   bool   `json:"available"`
	}
	if err := call(http.MethodPost, "/discovery/v1/sessions/"+sess.Id+"/description", nil, &desc); err != nil {
		return err
	}
	color.Cyan("\nDescription (available=%t):", desc.Available)
	fmt.Println(desc.Description)

	var search struct {
		Candidates []candidate `json:"candidates"`
	}
	body := map[string]int{"top_k": searchTop}
	if err := call(http.MethodPost, "/discovery/v1/sessions/"+sess.Id+"/search", body, &search); err != nil {
		return err
	}
	color.Cyan("\nCandidates:")
	for i, c := range search.Candidates {
		fmt.Printf("  %2d. %-50s %.3f\n", i+1, c.Title, c.SimilarityScore)
	}

	for i := 0; i < markRead && i < len(search.Candidates); i++ {
		c := search.Candidates[i]
		if err := call(http.MethodPost, "/discovery/v1/sessions/"+sess.Id+"/read/"+c.Id, nil, nil); err != nil {
			return err
		}
		color.Yellow("  marked as read: %s", c.Title)
	}

	var recs struct {
		Recommendations []candidate `json:"recommendations"`
		Placeholders    int         `json:"placeholders"`
	}
	start := time.Now()
	if err := call(http.MethodPost, "/discovery/v1/sessions/"+sess.Id+"/recommendations", nil, &recs); err != nil {
		return err
	}
	color.Cyan("\nRecommendations (%s, %d without rationale):", time.Since(start).Round(time.Millisecond), recs.Placeholders)
	for _, r := range recs.Recommendations {
		color.Green("  • %s", r.Title)
		fmt.Printf("    %s\n", r.Rationale)
	}

	return nil
}

// call sends a JSON request and decodes the data field of the response envelope into out
func call(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	if !env.Success {
		color.Red("%s %s failed: %d %s", method, path, env.Code, env.Message)
		return fmt.Errorf("%s %s: %s", method, path, env.Message)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

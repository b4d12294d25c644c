package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rrens/nl2sql/internal/domain"
)

// ExamplesHeader opens the few-shot block in every prompt
const ExamplesHeader = "[Good SQL Examples]:"

// FormatExamples renders similar questions as a few-shot block, or nothing when there are none
func FormatExamples(similar []domain.SimilarQuestion) string {
	if len(similar) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(ExamplesHeader + "\n")
	for _, ex := range similar {
		fmt.Fprintf(&b, "- Question:\n%s\n- SQL Query:\n%s\n\n", ex.Question, Flatten(ex.SQLQuery))
	}
	return b.String()
}

// BuildGenerationPrompt creates a prompt for SQL generation
func BuildGenerationPrompt(question, tableSchema string, similar []domain.SimilarQuestion, guidelines string) string {
	return fmt.Sprintf(`You are a BigQuery SQL guru. Write a SQL query conformant to BigQuery that answers the [Question], using the context below to refer correctly to the BigQuery tables and the column names they need.

[Guidelines]:
%s

[Table Schema]:
%s
%s

[Question]:
%s

[SQL Generated]:
`, guidelines, tableSchema, FormatExamples(similar), question)
}

// reflectionContract describes each key the reflection model must return
type reflectionContract struct {
	Question        string `json:"question"`
	IsMatching      string `json:"is_matching"`
	MismatchDetails string `json:"mismatch_details"`
}

var reflectionFormat = func() string {
	b, _ := json.Marshal(reflectionContract{
		Question:        "The question produced at step 2",
		IsMatching:      "'True' if the question produced at step 2 matches the [Question], 'False' otherwise",
		MismatchDetails: "Short indications on how the SQL Query should change to answer the [Question]",
	})
	return string(b)
}()

// BuildReflectionPrompt creates a prompt asking which question a SQL query answers
func BuildReflectionPrompt(question, generatedSQL, tableSchema string, similar []domain.SimilarQuestion) string {
	return fmt.Sprintf(`You are an AI for SQL analysis. Your mission is to analyse the [SQL Query] and identify the question it answers, then compare that question with the reference [Question].
Reply only with a JSON object as described in the [Analysis Steps].

[Table Schema]:
%s

%s[Analysis Steps]:
Work through this step by step to be sure of the answer:
1. Analyse the tables in [Table Schema] and understand how columns and tables relate.
2. Analyse the [SQL Query] and find the question it answers. Ground that question in the [Table Schema] only and do not let the [Question] influence it.
3. Compare the question from step 2 with the [Question] and identify any semantic difference between them.
4. Answer using only this JSON format: %s
5. Always use double quotes "" for JSON property names and values.
6. Do not wrap the JSON in a code fence and do not add any comment around it.

Before answering, check that the answer complies with the mission above.

[SQL Query]:
%s

[Question]:
%s

[Evaluation]:
`, tableSchema, FormatExamples(similar), reflectionFormat, generatedSQL, question)
}

// CorrectionInput is the context of one correction round
type CorrectionInput struct {
	Guidelines       string
	TableSchema      string
	Question         string
	SimilarQuestions []domain.SimilarQuestion
	// History holds every failed attempt in call order; the last entry is being corrected
	History []domain.Iteration
}

// FormatLastAttempt renders the most recent failed query and its errors
func FormatLastAttempt(history []domain.Iteration) string {
	if len(history) == 0 {
		return ""
	}
	last := history[len(history)-1]
	return fmt.Sprintf("SQL Query:\n%s\n\nErrors:\n%s", Flatten(last.SQL), stripLineBreaks(last.Errors))
}

// FormatForbiddenQueries renders every failed query so the model does not repeat one
func FormatForbiddenQueries(history []domain.Iteration) string {
	var b strings.Builder
	for _, it := range history {
		b.WriteString(Flatten(it.SQL))
		b.WriteString("\n\n")
	}
	return b.String()
}

// BuildCorrectionPrompt creates a prompt asking for a fix of the last failed query
func BuildCorrectionPrompt(in CorrectionInput) string {
	return fmt.Sprintf(`You are a BigQuery SQL guru. This session troubleshoots a Google BigQuery SQL query.
Given the [Last Generated SQL Query with Errors], return a correct [New Generated SQL Query] that fixes the errors.
The query must still answer the original question and follow the [Guidelines]:

[Guidelines]:
%s

[Table Schema]:
%s
%s

[Correction Steps]:
Work through this step by step to be sure of the corrected SQL query:
1. Analyse the tables in [Table Schema] and understand how columns and tables relate.
2. Analyse the query in [Last Generated SQL Query with Errors] and understand its syntax and semantic errors.
3. Propose a SQL query that corrects the errors while answering the [Question].
4. The [New Generated SQL Query] must not be any of the [Forbidden SQL Queries].
5. Return only the SQL query, without code fences or comments around it.

Before answering, check that the answer complies with the mission above.

[Question]:
%s

[Last Generated SQL Query with Errors]:
%s

[Forbidden SQL Queries]:
%s
[New Generated SQL Query]:
`, in.Guidelines, in.TableSchema, FormatExamples(in.SimilarQuestions), in.Question,
		FormatLastAttempt(in.History), FormatForbiddenQueries(in.History))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-engine/internal/assessment"
	"github.com/pdiddy/content-engine/internal/pipeline"
	"github.com/pdiddy/content-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an article or an assessment from the command line",
	Long: `Generate runs one of the agent chains without the HTTP server and stores
the result in the content database.`,
}

// --- article subcommand ---

var generateArticleCmd = &cobra.Command{
	Use:   "article",
	Short: "Research, write, and verify an article, lesson, or textbook",
	Long: `Article runs the researcher, writer, and verifier agents. Drafts below the
approval threshold are revised up to the configured number of times; a draft
that never reaches the threshold is discarded and the command fails.`,
	RunE: runGenerateArticle,
}

func runGenerateArticle(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	category, _ := cmd.Flags().GetString("category")
	subcategory, _ := cmd.Flags().GetString("subcategory")
	kind, _ := cmd.Flags().GetString("kind")
	audience, _ := cmd.Flags().GetString("audience")
	if topic == "" && len(args) > 0 {
		topic = strings.Join(args, " ")
	}

	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	article, err := a.pipeline.Generate(cmd.Context(), pipeline.Request{
		Topic:       topic,
		Category:    category,
		Subcategory: subcategory,
		Kind:        types.ArtifactKind(kind),
		Audience:    audience,
	})
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(article)
	}
	fmt.Printf("%s  %s\n", article.ID, article.Title)
	fmt.Printf("  kind: %s  category: %s  sections: %d\n", article.Kind, article.Category, len(article.Sections))
	fmt.Printf("  score: %d  revisions: %d\n", article.Quality.Score, article.Quality.Revisions)
	return nil
}

// --- assessment subcommand ---

var generateAssessmentCmd = &cobra.Command{
	Use:   "assessment",
	Short: "Build an assessment and its rubric",
	Long: `Assessment runs the analyzer, librarian, architect, creator, critic,
editor, and scorer agents. Progress is printed to stderr as each stage
starts and finishes.`,
	RunE: runGenerateAssessment,
}

func runGenerateAssessment(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	topic, _ := cmd.Flags().GetString("topic")
	gradeLevel, _ := cmd.Flags().GetString("grade-level")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("questions")
	typeNames, _ := cmd.Flags().GetStringSlice("types")

	req := assessment.Request{
		Subject:       subject,
		Topic:         topic,
		GradeLevel:    gradeLevel,
		Difficulty:    difficulty,
		QuestionCount: count,
	}
	for _, t := range typeNames {
		req.QuestionTypes = append(req.QuestionTypes, types.QuestionType(strings.TrimSpace(t)))
	}
	if _, err := assessment.Validate(req); err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.assessments.Run(cmd.Context(), req, assessment.EmitterFunc(printProgress))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(res)
	}
	as := res.Assessment
	fmt.Printf("%s  %s\n", as.ID, as.Title)
	fmt.Printf("  questions: %d  points: %d  rubric: %s\n", len(as.Questions), as.TotalPoints, as.RubricID)
	fmt.Printf("  quality: %d  audit cycles: %d  open issues: %d\n",
		as.Quality.Score, as.Quality.AuditCycles, as.Quality.OpenIssues)
	return nil
}

func printProgress(p assessment.Progress) {
	switch p.Type {
	case assessment.EventAudit:
		fmt.Fprintf(os.Stderr, "[%3d%%] audit cycle %d: %d issue(s)\n", p.Percent, p.Cycle, p.Issues)
	case assessment.EventError:
		fmt.Fprintf(os.Stderr, "[%3d%%] %s failed: %s\n", p.Percent, p.Stage, p.Error)
	case assessment.EventComplete:
		fmt.Fprintf(os.Stderr, "[%3d%%] done\n", p.Percent)
	default:
		fmt.Fprintf(os.Stderr, "[%3d%%] %-9s %-9s %s\n", p.Percent, p.Stage, p.Status, p.Message)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	generateArticleCmd.Flags().String("topic", "", "topic to write about (or pass it as arguments)")
	generateArticleCmd.Flags().String("category", "", "catalog category (required)")
	generateArticleCmd.Flags().String("subcategory", "", "catalog subcategory")
	generateArticleCmd.Flags().String("kind", "article", "artifact kind: article, lesson, or textbook")
	generateArticleCmd.Flags().String("audience", "", "intended readers (default \"general learners\")")
	generateArticleCmd.Flags().Bool("json", false, "print the stored article as JSON")

	generateAssessmentCmd.Flags().String("subject", "", "subject area (required)")
	generateAssessmentCmd.Flags().String("topic", "", "topic to assess (required)")
	generateAssessmentCmd.Flags().String("grade-level", "", "target grade level")
	generateAssessmentCmd.Flags().String("difficulty", "mixed", "easy, medium, hard, or mixed")
	generateAssessmentCmd.Flags().Int("questions", assessment.DefaultQuestionCount, "number of questions (1-50)")
	generateAssessmentCmd.Flags().StringSlice("types", nil, "question types: multiple_choice, true_false, short_answer, essay")
	generateAssessmentCmd.Flags().Bool("json", false, "print the assessment and rubric as JSON")

	generateCmd.AddCommand(generateArticleCmd)
	generateCmd.AddCommand(generateAssessmentCmd)

	rootCmd.AddCommand(generateCmd)
}

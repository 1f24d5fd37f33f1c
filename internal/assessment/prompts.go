// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assessment

import "text/template"

const jsonOnly = ` Respond with a single JSON object and nothing else.`

const analyzerSystem = `You are an assessment analyzer. You read an assessment request and decide what it must measure: learning objectives, the concepts behind them, and a question-type mix that fits the subject and grade level.` + jsonOnly

var analyzePromptTmpl = template.Must(template.New("analyze").Parse(`Plan an assessment.

Subject: {{.Subject}}
Topic: {{.Topic}}{{if .GradeLevel}}
Grade level: {{.GradeLevel}}{{end}}
Difficulty: {{.Difficulty}}
Number of questions: {{.QuestionCount}}
Allowed question types:{{range .QuestionTypes}} {{.}}{{end}}

Return a JSON object with these fields:
- objectives: measurable learning objectives ("Students can ...")
- concepts: the concepts the questions must cover
- question_mix: array of {"type": "<allowed type>", "count": n}; counts sum to {{.QuestionCount}}
`))

const librarianSystem = `You are a subject librarian. For each concept you supply accurate reference notes a question writer can rely on, and you never invent facts.` + jsonOnly

var librarianPromptTmpl = template.Must(template.New("librarian").Parse(`Prepare reference notes for an assessment on "{{.Request.Topic}}" ({{.Request.Subject}}).

Concepts:{{range .Analysis.Concepts}}
- {{.}}{{end}}

Return a JSON object: {"notes": [{"concept": "...", "summary": "...", "facts": ["..."]}]} with one note per concept.
`))

const architectSystem = `You are an assessment architect. You turn objectives and a question mix into a blueprint: one slot per question with its type, objective, concept, difficulty, and point value.` + jsonOnly

var architectPromptTmpl = template.Must(template.New("architect").Parse(`Design the blueprint for a {{.Request.Difficulty}} assessment on "{{.Request.Topic}}" ({{.Request.Subject}}) with exactly {{.Request.QuestionCount}} questions.

Objectives:{{range .Analysis.Objectives}}
- {{.}}{{end}}
Question mix:{{range .Analysis.QuestionMix}}
- {{.Type}}: {{.Count}}{{end}}

Return a JSON object with these fields:
- title: assessment title
- description: one sentence for students
- slots: array of {"type", "objective", "concept", "difficulty", "points"}; points are positive integers, essays worth more than true/false
`))

const creatorSystem = `You are a question creator. You write clear, unambiguous questions that match a blueprint exactly, with correct answers and brief explanations grounded in the reference notes.` + jsonOnly

var creatorPromptTmpl = template.Must(template.New("creator").Parse(`Write one question for each blueprint slot, in order.

Blueprint:{{range $i, $s := .Blueprint.Slots}}
{{$i}}. type={{$s.Type}} difficulty={{$s.Difficulty}} points={{$s.Points}} concept={{$s.Concept}} objective={{$s.Objective}}{{end}}

Reference notes:{{range .Notes.Notes}}
- {{.Concept}}: {{.Summary}}{{range .Facts}}
  * {{.}}{{end}}{{end}}

Return {"questions": [{"type", "prompt", "options", "answer", "explanation", "objective", "difficulty", "points"}]}.
multiple_choice questions have four options and the answer is the exact text of one option; true_false answers are "true" or "false".
`))

const criticSystem = `You are an assessment critic. You look for factual errors, ambiguous wording, answer keys that are wrong, options that give the answer away, and questions that miss their objective. Report only real problems.` + jsonOnly

var criticPromptTmpl = template.Must(template.New("critic").Parse(`Review these questions for an assessment on "{{.Request.Topic}}" ({{.Request.Subject}}).

{{.QuestionsJSON}}

Return {"issues": [{"question": <zero-based index>, "problem": "...", "suggestion": "..."}]}. Return an empty issues array when the questions are ready.
`))

const editorSystem = `You are an assessment editor. You fix the reported problems in a question set while keeping the question count, order, types, and point values unchanged.` + jsonOnly

var editorPromptTmpl = template.Must(template.New("editor").Parse(`Fix these problems:{{range .Issues}}
- question {{.Question}}: {{.Problem}} (suggestion: {{.Suggestion}}){{end}}

Questions:
{{.QuestionsJSON}}

Return the complete corrected set as {"questions": [...]} with the same fields.
`))

const scorerSystem = `You are an assessment scorer. You write a grading rubric for each question and rate the overall quality of the assessment.` + jsonOnly

var scorerPromptTmpl = template.Must(template.New("scorer").Parse(`Write the rubric for this assessment on "{{.Request.Topic}}" ({{.Request.Subject}}).

{{.QuestionsJSON}}

Return a JSON object with these fields:
- criteria: one entry per question, in order: {"points": n, "criteria": ["what earns credit"], "guidance": "partial credit notes"}
- grading_notes: advice for the grader
- quality_score: integer 0-100 for the assessment as a whole
`))

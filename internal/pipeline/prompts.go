// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "text/template"

const researcherSystem = `You are a meticulous research analyst preparing source material for educational content. You gather accurate, well-established knowledge, flag common student misconceptions, and never invent citations. Respond with a single JSON object and nothing else.`

var researchPromptTmpl = template.Must(template.New("research").Parse(`Research the following topic for a {{.Kind}} aimed at {{.Audience}}.

Topic: {{.Topic}}
Category: {{.Category}}{{if .Subcategory}}
Subcategory: {{.Subcategory}}{{end}}

Return a JSON object with these fields:
- summary: two or three sentences describing what a learner must understand
- key_concepts: the essential concepts, most fundamental first
- facts: concrete, verifiable facts, figures, or examples
- misconceptions: mistakes learners commonly make about this topic
- outline: suggested section headings in teaching order
- sources: reputable references (textbooks, institutions, standards); omit anything you are unsure exists

Example response:
{"summary": "...", "key_concepts": ["..."], "facts": ["..."], "misconceptions": ["..."], "outline": ["..."], "sources": ["..."]}
`))

const writerSystem = `You are an expert educational content writer. You turn research notes into clear, engaging, accurate learning material pitched at the stated audience. Respond with a single JSON object and nothing else.`

var writePromptTmpl = template.Must(template.New("write").Parse(`Write a {{.Request.Kind}} about "{{.Request.Topic}}" ({{.Request.Category}}) for {{.Request.Audience}}.
{{if eq .Request.Kind "lesson"}}
Structure it as a lesson: learning objectives, a warm-up, direct instruction, guided practice, and a check for understanding. Each of these is one section.
{{else if eq .Request.Kind "textbook"}}
Structure it as a short textbook: every section is a chapter with a numbered heading ("Chapter 1: ...") and a substantial body that ends with review questions.
{{else}}
Structure it as an article of four to six sections with descriptive headings.
{{end}}
Research notes:
Summary: {{.Research.Summary}}
Key concepts:{{range .Research.KeyConcepts}}
- {{.}}{{end}}
Facts:{{range .Research.Facts}}
- {{.}}{{end}}
Misconceptions to address:{{range .Research.Misconceptions}}
- {{.}}{{end}}
Suggested outline:{{range .Research.Outline}}
- {{.}}{{end}}

Return a JSON object with these fields:
- title: the title
- description: one or two sentences shown in listings
- sections: array of {"heading": "...", "body": "..."}; bodies are Markdown paragraphs
- key_takeaways: three to five short bullet points
`))

const reviserSystem = `You are a senior revision editor for educational content. You apply reviewer feedback precisely, keep everything that already works, and return the complete revised piece. Respond with a single JSON object and nothing else.`

var revisePromptTmpl = template.Must(template.New("revise").Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).Parse(`Revise this {{.Request.Kind}} about "{{.Request.Topic}}" for {{.Request.Audience}}.

The reviewer scored it {{.Verdict.Score}}/100.
Reviewer feedback: {{.Verdict.Feedback}}
Required revisions:{{range $i, $r := .Verdict.RequiredRevisions}}
{{inc $i}}. {{$r}}{{end}}

Current draft (JSON):
{{.DraftJSON}}

Return the full revised draft as a JSON object with the same fields: title, description, sections (array of {"heading", "body"}), key_takeaways.
`))

const verifierSystem = `You are a strict quality verifier for educational content. You check factual accuracy, clarity for the audience, structure, completeness against the research, and whether misconceptions are addressed. Respond with a single JSON object and nothing else.`

var verifyPromptTmpl = template.Must(template.New("verify").Parse(`Review this {{.Request.Kind}} about "{{.Request.Topic}}" written for {{.Request.Audience}}.

Score it from 0 to 100. A score of {{.Threshold}} or more means it is ready to publish.

Draft (JSON):
{{.DraftJSON}}

Return a JSON object with these fields:
- score: integer 0-100
- is_approved: true when score >= {{.Threshold}}
- feedback: a short overall assessment
- required_revisions: specific, actionable changes; must be non-empty when the score is below {{.Threshold}}

Example response:
{"score": 72, "is_approved": false, "feedback": "...", "required_revisions": ["Correct the date in section 2", "Add a worked example"]}
`))

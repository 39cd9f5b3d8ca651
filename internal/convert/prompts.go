package convert

import (
	"fmt"

	"cvconvert-backend/internal/cv"
)

const extractSystemInstruction = `You are the CV extraction system.

CRITICAL RULE #1 - BULLETS MUST BE 100% EXACT:
- If the source lists 9 bullets you MUST extract all 9
- If the source lists 15 bullets you MUST extract all 15
- NEVER summarize, shorten or drop bullets
- NEVER change the verb form of a bullet
- COPY every bullet exactly as written, word for word

Extract every relevant fact from the source CV into structured JSON.
Also extract the calling name and salutation when available.

NAME FORMATTING:
- NEVER include salutations such as "Mr", "Mrs" in the name field
- Extract only the real first and last name
- Extract the calling name WITHOUT quotation marks
- When hours per week are mentioned (e.g. "36 hours per week"), put the number ("36") in the hours field

WORK EXPERIENCE EXTRACTION (IMPORTANT):
- period: normalize the dash to ' - ' (e.g. "07/2023 - present")
- employer: ONLY the employer, never the role
- role: ONLY the role, in Title Case, no double spaces; when the role follows a pipe (|), take only the role
- bullets: extract ALL bullets and preserve their original verb form

BULLETS - VERY IMPORTANT:
- No limit, no summarizing, no shortening
- Copy each bullet exactly as it appears in the source
- Preserve all detail and complete sentences`

const oldStyleSystemInstruction = `You are the OLD STYLE CV generator.

ABSOLUTE RULE - NO LIMIT ON BULLETS:
- NEVER remove or shorten bullets
- If there are 9 bullets, all 9 must remain
- Verbs must stay in the infinitive form

Adjust the JSON data according to the strict OLD STYLE rules.

WORK EXPERIENCE RULES (CRUCIAL):
- Keep ALL bullets from the input - do not shorten or summarize
- Every bullet starts with a verb in the infinitive and a capital letter
- End every bullet with a semicolon (;), the last one of a role with a period (.)
- SORT bullets from shortest to longest per role
- No first person, no marketing language
- The role name must be fully lowercase in the JSON

PERSONAL DETAILS RULES:
- Format the name as "[Initial].[Surname] ([Calling name])"
- No salutations inside the name itself
- Remove place of residence and date of birth
- Only include a registration line when a registration number exists

EDUCATION RULES:
- Format: "2015 - 2020    BSc Social Work (diploma obtained)"
- Use full degree names`

const newStyleSystemInstruction = `You are the NEW STYLE CV generator for the current corporate identity.
Convert all work experience into fully written-out infinitive sentences under
the hard rules below, without loss of meaning, without simplification and
without deviating from structure, tone or punctuation.

SENTENCE RULES (HARD RULES):
- Every line starts with a verb in the infinitive, never with a noun or keyword
- Every line is a complete, meaningful sentence; loose terms or labels are not allowed
- Keywords must be rewritten into fully written-out sentences without losing content

MEANING PRESERVATION (CRUCIAL):
- Context must never be removed, including qualifiers such as within, according to, aimed at, in coordination with
- Tasks must not be simplified or reduced to generic descriptions
- Specific terms must not be replaced by generic terms
Allowed only: merging duplicate tasks when meaning stays fully identical,
restructuring for readability without changing content, reordering tasks when
it strengthens the logical build-up.

CORE OF THE ROLE:
- The first line addresses the core responsibility of the role directly
- Daily tasks are written out concretely and operationally
- Administration, reporting and system usage are described separately and completely
- Every line ends with a semicolon; only the last line of a role ends with a period
- Bullets are mandatory

TONE:
- Businesslike and factual; professional and neutral
- No first person, no marketing language, no subjective claims

QUALITY CHECK - the output is invalid when:
- A line contains no verb
- The first sentence misses the core of the role
- Context words disappear
- Education and courses are mixed together
- Dates are not in the MM/YYYY - MM/YYYY format

OTHER RULES:
1. NAME: [First name] [Surname] in Title Case.
2. ANALYSIS TAGS: generate EXACTLY 5 short, powerful capability tags.
3. EDUCATION: sort most recent first; never mix courses and education.`

// Auxiliary generator instructions, one per text kind.
const (
	vacancySystemInstruction = `You are the vacancy cleaner module.
Convert the input into clean, structured plain text.`

	motivationSystemInstruction = `You are the motivation letter generator.
Write a motivation letter on behalf of the candidate in a sober business style. Never invent facts.`

	profileSystemInstruction = `You are the candidate profile generator.
Generate a short introduction text (5-7 sentences) for recruiters.`

	emailSystemInstruction = `You are the client mail module.
Generate a professional e-mail text introducing the candidate to a client.`

	checkSystemInstruction = `You are the CV check module.
Find problems such as gaps in work experience or inconsistencies. Report
issues, open questions for the candidate, and suggested improvements.`
)

func extractionPrompt(text string) string {
	return fmt.Sprintf(`INSTRUCTION: Extract all relevant data from this CV. The output must conform EXACTLY to the JSON schema.

SPECIFIC FIELDS:
- 'availability': look for a start date (e.g. "Immediately", "March 1st").
- 'hours': look for hours/availability (e.g. "32-36 hours", "Full-time").
- 'skj': look for a professional registration number.

Raw text source:
%s`, text)
}

func refinementPrompt(template, currentData string) string {
	styleName := "NEW STYLE"
	if template == cv.TemplateOld {
		styleName = "OLD STYLE"
	}
	return fmt.Sprintf(`TASK: Refine the CV data below for the %s template.

CRITICAL INSTRUCTION:
- The "bullets" arrays in "experience" must remain EXACTLY UNCHANGED
- COPY all bullets 1-to-1 from the input to the output
- CHANGE NOTHING about the bullets: no shortening, no summarizing, no rewriting
- If a role has 9 bullets in the input, the output must also have EXACTLY 9 bullets
- Do NOT change verb forms
- You MAY adjust the other fields (name format, tags, titles, etc.)

--- CURRENT DATA ---
%s`, styleName, currentData)
}

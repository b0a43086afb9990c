package evidence

import "fmt"

const promptTemplate = `You are a recruiter assistant. Analyze this resume and provide:
1. A brief summary of the candidate's profile (2-3 sentences)
2. How this candidate matches the query: "%s"
3. Key strengths relevant to the query

Resume ID: %s

MOST RELEVANT SECTIONS (from search):
%s

FULL RESUME:
%s

Focus on the relevant sections above, but use the full resume for complete context.
Provide a concise response.
Also, if there are any duplicate resumes, make sure to output only one summary per unique resume.`

// BuildPrompt renders the summarization prompt for one resume.
func BuildPrompt(query, resumeID, matchedContext, resume string) string {
	return fmt.Sprintf(promptTemplate, query, resumeID, matchedContext, resume)
}

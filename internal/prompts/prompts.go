package prompts

import (
	"fmt"
	"strings"
)

// StructuredOutputInstruction is appended to every prompt that expects JSON
const StructuredOutputInstruction = "IMPORTANT: Respond ONLY with valid JSON. Do not include any markdown formatting, code blocks, or explanatory text."

// WithStructuredOutput appends the strict-output instruction
func WithStructuredOutput(prompt string) string {
	return prompt + "\n\n" + StructuredOutputInstruction
}

func BuildEntitiesPrompt(transcript string) string {
	return fmt.Sprintf(`You are a medical NLP expert. Extract medical entities from the following physician-patient conversation transcript.

Extract the following information:
1. Patient Name (if mentioned)
2. Symptoms (list all symptoms mentioned)
3. Diagnosis (medical diagnosis if stated)
4. Treatment (treatments, medications, procedures mentioned)
5. Prognosis (expected outcome or recovery timeline)
6. Current Status (patient's current condition)

Transcript:
%s

Return a JSON object with the following structure:
{
  "Patient_Name": "string or null",
  "Symptoms": ["symptom1", "symptom2"],
  "Diagnosis": "string or null",
  "Treatment": ["treatment1", "treatment2"],
  "Current_Status": "string",
  "Prognosis": "string or null"
}

If information is not available or ambiguous, use null for strings or empty arrays for lists.`, transcript)
}

func BuildKeywordsPrompt(transcript string, topN int) string {
	return fmt.Sprintf(`Extract the %d most important medical keywords or phrases from this medical transcript.
Focus on medical terms, symptoms, treatments, and clinical findings.

Transcript:
%s

Return a JSON array of strings:
["keyword1", "keyword2", ...]`, topN, transcript)
}

func BuildSummaryPrompt(transcript string) string {
	return fmt.Sprintf(`You are a medical transcription expert. Summarize the following physician-patient conversation into a structured medical report.

Transcript:
%s

Create a comprehensive summary that includes:
- Patient demographics (if mentioned)
- Chief complaint
- History of present illness
- Key symptoms and timeline
- Previous treatments
- Current status
- Medical findings

Return a JSON object with this structure:
{
  "Patient_Demographics": {
    "Name": "string or null",
    "Age": "string or null",
    "Gender": "string or null"
  },
  "Chief_Complaint": "string",
  "History_of_Present_Illness": "string",
  "Symptoms": {
    "Primary": ["symptom1", "symptom2"],
    "Secondary": ["symptom1", "symptom2"],
    "Timeline": "string description"
  },
  "Previous_Treatments": ["treatment1", "treatment2"],
  "Current_Status": "string",
  "Medical_Findings": "string",
  "Clinical_Notes": "string"
}`, transcript)
}

func BuildExecutiveSummaryPrompt(transcript string, maxLength int) string {
	return fmt.Sprintf(`Summarize the following medical conversation in %d characters or less.
Focus on the key medical issue, diagnosis, and outcome.

Transcript:
%s

Provide a concise summary:`, maxLength, transcript)
}

func BuildSentimentPrompt(patientText string) string {
	return fmt.Sprintf(`You are analyzing patient sentiment and intent from medical dialogue. Analyze the following patient statement:

Patient Statement: %q

Classify:
1. Sentiment: One of "Anxious", "Neutral", or "Reassured"
2. Intent: One of "Seeking reassurance", "Reporting symptoms", "Expressing concern", or "Other"

Return a JSON object:
{
  "Sentiment": "Anxious|Neutral|Reassured",
  "Intent": "Seeking reassurance|Reporting symptoms|Expressing concern|Other"
}`, strings.TrimSpace(patientText))
}

func BuildSOAPPrompt(transcript string) string {
	return fmt.Sprintf(`You are a medical documentation expert. Convert the following physician-patient conversation into a structured SOAP note.

SOAP stands for:
- Subjective: Patient's reported symptoms and history
- Objective: Observable findings, physical exam results
- Assessment: Diagnosis and clinical assessment
- Plan: Treatment plan and follow-up

Transcript:
%s

Return a JSON object with this exact structure:
{
  "Subjective": {
    "Chief_Complaint": "string",
    "History_of_Present_Illness": "string"
  },
  "Objective": {
    "Physical_Exam": "string",
    "Observations": "string"
  },
  "Assessment": {
    "Diagnosis": "string",
    "Severity": "string"
  },
  "Plan": {
    "Treatment": "string",
    "Follow-Up": "string"
  }
}

If information is not available in the transcript, use "Not documented" for that field.`, transcript)
}

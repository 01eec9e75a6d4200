package adjudicate

import "strings"

const inputPlaceholder = "{INPUT_JSON}"

const classificationPrompt = `Role: You are a Senior Medical Claims Adjudicator. Your task is to analyze hospital billing and discharge JSON data to determine the "Claim Status" (Accepted, Rejected, or Pending).

Input Data:
{INPUT_JSON}

Instructions:
Evaluate the claim based on the following four pillars:

1. Medical Necessity & Alignment:
   - Does the procedure_performed align with the primary_diagnosis?
   - Is the length_of_stay_days medically justifiable for this specific procedure?

2. Billing Consistency & Math Accuracy:
   - Verify if room_rent rate_per_day × number_of_days matches the room_rent_total.
   - Verify if the sum of all individual charges in the bill section equals the gross_total.
   - Ensure the net_payable correctly subtracts the discount from the gross_total.

3. Administrative Completeness:
   - Check for missing critical identifiers (e.g., uhid_number, policy_number, doctor_registration_number).
   - Ensure admission_date and discharge_date are consistent across the insurance, discharge, and bill objects.

4. Red Flags:
   - Look for discrepancies in patient names (e.g., "Rahul Verma" vs "Mr. Rahul Verma").
   - Identify if any "Secondary Diagnosis" could be a pre-existing condition exclusion under standard policies.

You MUST respond with ONLY valid JSON matching this exact structure, no markdown code blocks or other text:
{
  "decision": "Accepted" | "Rejected" | "Pending",
  "confidence_score": <number 0-100>,
  "reasoning": ["<bullet point 1>", "<bullet point 2>", ...],
  "missing_info": ["<missing field 1>", "<missing field 2>", ...]
}`

// renderPrompt substitutes the consolidated claim into the template. The
// placeholder is replaced once, so claim text containing it is left alone.
func renderPrompt(consolidated []byte) string {
	return strings.Replace(classificationPrompt, inputPlaceholder, string(consolidated), 1)
}

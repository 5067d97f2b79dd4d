package domain

// DefaultAnswerPrompt is the built-in answer prompt. %s is the question.
const DefaultAnswerPrompt = `You are an expert document analyst. Answer the question based on the provided image(s).

Question: %s

Instructions:
- Provide a comprehensive, accurate answer
- Include specific details from the image
- If multiple images are provided, synthesize information across them
- Cite relevant visual elements that support your answer
- Be concise but thorough

Answer:`

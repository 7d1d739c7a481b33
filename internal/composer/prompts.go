package composer

const composerSystem = "You help French users read the annual hospital ranking. You answer in French."

// The model writes the lead-in only. The extract is appended to the
// reply unchanged, which is what keeps names, ranks and scores verbatim.
const introPrompt = `Write one short French sentence that introduces the ranking extract below as the answer to the user's question. Do not repeat the establishment names, scores or ranks; the extract follows your sentence unchanged. No quotation marks.

Question: %s

Extract:
%s`

package analyst

const analystSystem = `You are the query analyst of an assistant answering questions about the published French hospital and clinic ranking ("palmarès des hôpitaux et cliniques"). For each request you extract exactly one query parameter from the user's message, written in French. Respond with ONLY a JSON object matching the requested schema, without markdown fences or commentary.`

const locationPrompt = `Extract the city the user wants establishments in or near.

Status rules:
- "none": no city or area is mentioned
- "french": a city in France is mentioned (metropolitan or overseas)
- "foreign": the mentioned place is outside France
- "ambiguous": a French place is mentioned but it is unclear which city is meant

User message:
%s

JSON schema: {"status": "none|french|foreign|ambiguous", "city": "city name, or empty"}`

const institutionPrompt = `Extract the specific establishment the user names, if any: a hospital, CHU, clinic or polyclinic referred to by its proper name. A city or a kind of establishment alone is not a name.

User message:
%s

JSON schema: {"institution": "establishment name, or empty"}`

const categoryPrompt = `Determine whether the user restricts the search to the public hospital sector or the private clinic sector.

- "public": public hospitals (hôpital, CHU, hôpital public...)
- "prive": private clinics (clinique, établissement privé...)
- "none": no restriction mentioned

User message:
%s

JSON schema: {"category": "public|prive|none"}`

const countPrompt = `Determine how many establishments the user asks for (for example "les 5 meilleurs" means 5). Use null when no number is requested.

User message:
%s

JSON schema: {"count": integer or null}`

const specialtyPrompt = `Extract the medical specialty the user asks about, using the known specialty list when one matches. Return empty when no specialty is mentioned.

Known specialties:
%s

User message:
%s

JSON schema: {"specialty": "specialty name, or empty"}`

const intentPrompt = `The user is in an ongoing search with active filters: %s.

Classify the new message:
- "continuation": it refines, completes or follows up on the current search
- "nouvelle_recherche": it explicitly starts an unrelated search or asks to start over ("nouvelle recherche", "on recommence", "oublie tout")

If in doubt, answer "continuation".

User message:
%s

JSON schema: {"intent": "continuation|nouvelle_recherche"}`

package quizgen

import (
	"math/rand"

	"englearn/backend/config"
)

// bankKey indexes the static bank by (topic, level).
type bankKey struct {
	topic string
	level string
}

// Bank is the curated static question pool used when the model cannot
// produce a valid quiz.
type Bank struct {
	pool map[bankKey][]GeneratedQuestion
}

// NewBank loads the curated questions.
func NewBank() *Bank {
	b := &Bank{pool: make(map[bankKey][]GeneratedQuestion)}
	for _, q := range seededQuestions() {
		k := bankKey{topic: q.Topic, level: q.Difficulty}
		b.pool[k] = append(b.pool[k], q)
	}
	return b
}

// Select draws n questions for (topic, level), skipping any whose text is in
// avoid, padding from adjacent levels when the exact level runs short.
// topic may be TopicMixed to draw across all topics. When every candidate
// is used up, fewer than n questions are returned.
func (b *Bank) Select(topic, level string, n int, avoid map[string]bool) []GeneratedQuestion {
	levels := adjacentLevels(level)

	var picked []GeneratedQuestion
	seen := make(map[string]bool)

	// First pass honors the avoid-list; the second pass relaxes it so the
	// fallback path still succeeds when the bank is smaller than the
	// user's recent history.
	for _, relaxed := range []bool{false, true} {
		for _, lvl := range levels {
			for _, q := range b.candidates(topic, lvl) {
				if len(picked) == n {
					return picked
				}
				if seen[q.Question] {
					continue
				}
				if !relaxed && avoid[q.Question] {
					continue
				}
				seen[q.Question] = true
				picked = append(picked, q)
			}
		}
		if len(picked) == n {
			break
		}
	}
	return picked
}

// candidates returns a shuffled copy of the pool for (topic, level).
func (b *Bank) candidates(topic, level string) []GeneratedQuestion {
	var qs []GeneratedQuestion
	if topic == TopicMixed {
		for _, t := range Topics {
			qs = append(qs, b.pool[bankKey{topic: t, level: level}]...)
		}
	} else {
		qs = append(qs, b.pool[bankKey{topic: topic, level: level}]...)
	}

	rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
	return qs
}

// adjacentLevels returns the requested level first, then its neighbors in
// preference order.
func adjacentLevels(level string) []string {
	ordered := []string{level}
	if next := config.NextLevel(level); next != level {
		ordered = append(ordered, next)
	}
	if prev := config.PrevLevel(level); prev != level {
		ordered = append(ordered, prev)
	}
	return ordered
}

const (
	beginnerPassage = "Tom lives in a small town near the sea. Every morning he walks to the bakery on the corner and buys fresh bread for his family. The baker, Mrs. Green, always smiles and asks about his little sister. On Sundays, Tom and his father go fishing at the old pier, and his mother makes soup with the fish they catch."

	intermediatePassage = "When the city council announced plans to close the public library, hundreds of residents signed a petition within a week. Many argued that the library was more than a place to borrow books: it offered free internet access, homework clubs for children, and a warm space for elderly people in winter. Faced with growing pressure, the council agreed to hold a public meeting before making a final decision."

	advancedPassage = "The notion that languages simply die is, according to several linguists, a convenient oversimplification. Languages are rarely abandoned overnight; rather, they recede through generations of gradually narrowing use, confined first to the home, then to ritual, and finally to memory. Revitalization efforts, while admirable, often stumble not on a lack of enthusiasm but on the absence of everyday domains in which the language retains genuine utility."
)

// seededQuestions returns the curated fallback pool: four questions for
// every topic at every level. With adjacent-level padding, a single topic
// fills up to twelve questions at intermediate but only eight at beginner
// or advanced.
func seededQuestions() []GeneratedQuestion {
	return []GeneratedQuestion{
		// Grammar — beginner
		{Question: "Which sentence is correct?", Options: []string{"I am student", "I am a student", "I am the student", "I student"}, CorrectAnswer: "I am a student", Explanation: "We use 'a' before singular countable nouns when introducing them.", Topic: "Grammar", Difficulty: "beginner"},
		{Question: "Choose the correct sentence.", Options: []string{"She don't like tea", "She doesn't likes tea", "She doesn't like tea", "She not like tea"}, CorrectAnswer: "She doesn't like tea", Explanation: "Third person singular negatives use 'doesn't' plus the base verb.", Topic: "Grammar", Difficulty: "beginner"},
		{Question: "There ____ many books on the table.", Options: []string{"is", "are", "be", "am"}, CorrectAnswer: "are", Explanation: "'Books' is plural, so we use 'are'.", Topic: "Grammar", Difficulty: "beginner"},
		{Question: "I go ____ school by bus.", Options: []string{"to", "at", "in", "on"}, CorrectAnswer: "to", Explanation: "We use 'to' for movement toward a place: go to school.", Topic: "Grammar", Difficulty: "beginner"},
		// Grammar — intermediate
		{Question: "If I ____ you, I would study harder.", Options: []string{"am", "was", "were", "be"}, CorrectAnswer: "were", Explanation: "In second conditional sentences, we use 'were' for all persons after 'if'.", Topic: "Grammar", Difficulty: "intermediate"},
		{Question: "The report ____ by the manager yesterday.", Options: []string{"was written", "wrote", "is written", "has written"}, CorrectAnswer: "was written", Explanation: "Passive voice in the past: was/were + past participle.", Topic: "Grammar", Difficulty: "intermediate"},
		{Question: "She asked me where ____.", Options: []string{"did I live", "I lived", "do I live", "I am living"}, CorrectAnswer: "I lived", Explanation: "Reported questions use statement word order: where I lived.", Topic: "Grammar", Difficulty: "intermediate"},
		{Question: "You ____ have told me earlier — now it is too late.", Options: []string{"should", "must", "can", "may"}, CorrectAnswer: "should", Explanation: "'Should have' expresses regret about a past action that did not happen.", Topic: "Grammar", Difficulty: "intermediate"},
		// Grammar — advanced
		{Question: "____ had the meeting started when the fire alarm went off.", Options: []string{"Hardly", "Rarely", "Never", "Seldom"}, CorrectAnswer: "Hardly", Explanation: "'Hardly had X happened when Y' is an inverted structure for two nearly simultaneous past events.", Topic: "Grammar", Difficulty: "advanced"},
		{Question: "The committee insisted that the proposal ____ revised.", Options: []string{"is", "was", "be", "will be"}, CorrectAnswer: "be", Explanation: "Verbs like 'insist' and 'demand' take the subjunctive: that it be revised.", Topic: "Grammar", Difficulty: "advanced"},
		{Question: "Choose the sentence with the correct use of inversion.", Options: []string{"Never I have seen such a mess", "Never have I seen such a mess", "I never have seen such such a mess", "Have never I seen such a mess"}, CorrectAnswer: "Never have I seen such a mess", Explanation: "After negative adverbials like 'never', the auxiliary moves before the subject.", Topic: "Grammar", Difficulty: "advanced"},
		{Question: "But for your help, we ____ the deadline.", Options: []string{"would have missed", "will miss", "had missed", "would miss"}, CorrectAnswer: "would have missed", Explanation: "'But for' introduces an implied third conditional: would have + past participle.", Topic: "Grammar", Difficulty: "advanced"},

		// Vocabulary — beginner
		{Question: "What is the opposite of 'big'?", Options: []string{"tall", "small", "long", "wide"}, CorrectAnswer: "small", Explanation: "'Small' is the direct antonym of 'big'.", Topic: "Vocabulary", Difficulty: "beginner"},
		{Question: "Which word means a place where you buy food?", Options: []string{"library", "market", "station", "hospital"}, CorrectAnswer: "market", Explanation: "A market is a place where food and other goods are sold.", Topic: "Vocabulary", Difficulty: "beginner"},
		{Question: "A person who teaches students is a ____.", Options: []string{"doctor", "driver", "teacher", "farmer"}, CorrectAnswer: "teacher", Explanation: "A teacher is a person whose job is teaching.", Topic: "Vocabulary", Difficulty: "beginner"},
		{Question: "Which word is a color?", Options: []string{"happy", "green", "fast", "cold"}, CorrectAnswer: "green", Explanation: "'Green' is a color; the other words describe feelings, speed and temperature.", Topic: "Vocabulary", Difficulty: "beginner"},
		// Vocabulary — intermediate
		{Question: "Which word is closest in meaning to 'reluctant'?", Options: []string{"unwilling", "eager", "careless", "confident"}, CorrectAnswer: "unwilling", Explanation: "'Reluctant' means hesitant or unwilling to do something.", Topic: "Vocabulary", Difficulty: "intermediate"},
		{Question: "To 'put off' a meeting means to ____ it.", Options: []string{"cancel", "postpone", "attend", "organize"}, CorrectAnswer: "postpone", Explanation: "The phrasal verb 'put off' means to delay to a later time.", Topic: "Vocabulary", Difficulty: "intermediate"},
		{Question: "She has a very ____ schedule this week — no free time at all.", Options: []string{"loose", "tight", "narrow", "heavy-handed"}, CorrectAnswer: "tight", Explanation: "A 'tight schedule' is the natural collocation for having little free time.", Topic: "Vocabulary", Difficulty: "intermediate"},
		{Question: "Which word means 'to make something less severe'?", Options: []string{"aggravate", "alleviate", "accumulate", "anticipate"}, CorrectAnswer: "alleviate", Explanation: "'Alleviate' means to make pain or a problem less severe.", Topic: "Vocabulary", Difficulty: "intermediate"},
		// Vocabulary — advanced
		{Question: "The new policy has been ____ by the committee.", Options: []string{"ratified", "justified", "clarified", "nullified"}, CorrectAnswer: "ratified", Explanation: "'Ratified' means officially approved or confirmed, which fits the context.", Topic: "Vocabulary", Difficulty: "advanced"},
		{Question: "His argument was so ____ that even his critics were persuaded.", Options: []string{"cogent", "verbose", "tenuous", "oblique"}, CorrectAnswer: "cogent", Explanation: "A 'cogent' argument is clear, logical and convincing.", Topic: "Vocabulary", Difficulty: "advanced"},
		{Question: "To 'throw in the towel' means to ____.", Options: []string{"start a fight", "give up", "take a break", "celebrate"}, CorrectAnswer: "give up", Explanation: "The idiom comes from boxing, where throwing in the towel concedes the match.", Topic: "Vocabulary", Difficulty: "advanced"},
		{Question: "Her remarks were dismissed as ____ — bitter and resentful.", Options: []string{"rancorous", "magnanimous", "equitable", "placid"}, CorrectAnswer: "rancorous", Explanation: "'Rancorous' describes speech or feeling full of bitterness.", Topic: "Vocabulary", Difficulty: "advanced"},

		// Reading — beginner
		{Question: "Where does Tom live?", Options: []string{"In a big city", "In a small town near the sea", "On a farm", "In the mountains"}, CorrectAnswer: "In a small town near the sea", Explanation: "The passage opens by saying Tom lives in a small town near the sea.", Topic: "Reading", Difficulty: "beginner", Passage: beginnerPassage},
		{Question: "What does Tom buy every morning?", Options: []string{"Fish", "Milk", "Fresh bread", "Soup"}, CorrectAnswer: "Fresh bread", Explanation: "He walks to the bakery and buys fresh bread for his family.", Topic: "Reading", Difficulty: "beginner", Passage: beginnerPassage},
		{Question: "Who is Mrs. Green?", Options: []string{"Tom's mother", "The baker", "Tom's sister", "A fisherman"}, CorrectAnswer: "The baker", Explanation: "The passage names Mrs. Green as the baker who smiles at Tom.", Topic: "Reading", Difficulty: "beginner", Passage: beginnerPassage},
		{Question: "What do Tom and his father do on Sundays?", Options: []string{"Bake bread", "Go fishing", "Visit the city", "Make soup"}, CorrectAnswer: "Go fishing", Explanation: "On Sundays they go fishing at the old pier.", Topic: "Reading", Difficulty: "beginner", Passage: beginnerPassage},
		// Reading — intermediate
		{Question: "Why did residents sign the petition?", Options: []string{"They wanted a new library built", "They opposed closing the library", "They wanted longer opening hours", "They disliked the city council"}, CorrectAnswer: "They opposed closing the library", Explanation: "The petition followed the council's plan to close the library.", Topic: "Reading", Difficulty: "intermediate", Passage: intermediatePassage},
		{Question: "Which of these is NOT mentioned as a library service?", Options: []string{"Free internet access", "Homework clubs", "A warm space in winter", "Free coffee for students"}, CorrectAnswer: "Free coffee for students", Explanation: "The passage lists internet, homework clubs and warmth; coffee is never mentioned.", Topic: "Reading", Difficulty: "intermediate", Passage: intermediatePassage},
		{Question: "What did the council agree to do?", Options: []string{"Keep the library open permanently", "Hold a public meeting first", "Build a bigger library", "Ignore the petition"}, CorrectAnswer: "Hold a public meeting first", Explanation: "Faced with pressure, the council agreed to a public meeting before deciding.", Topic: "Reading", Difficulty: "intermediate", Passage: intermediatePassage},
		{Question: "The phrase 'more than a place to borrow books' suggests the library ____.", Options: []string{"lends too few books", "serves wider community needs", "is mainly for children", "should charge for services"}, CorrectAnswer: "serves wider community needs", Explanation: "The sentence introduces the list of community services beyond lending.", Topic: "Reading", Difficulty: "intermediate", Passage: intermediatePassage},
		// Reading — advanced
		{Question: "According to the passage, how do languages usually disappear?", Options: []string{"They are abandoned overnight", "They recede gradually across generations", "They are banned by governments", "They merge with other languages"}, CorrectAnswer: "They recede gradually across generations", Explanation: "The passage describes a gradual narrowing of use over generations.", Topic: "Reading", Difficulty: "advanced", Passage: advancedPassage},
		{Question: "What does the author identify as the main obstacle to revitalization?", Options: []string{"Lack of enthusiasm", "Absence of everyday domains of use", "Shortage of teachers", "Government indifference"}, CorrectAnswer: "Absence of everyday domains of use", Explanation: "Efforts stumble 'not on a lack of enthusiasm but on the absence of everyday domains'.", Topic: "Reading", Difficulty: "advanced", Passage: advancedPassage},
		{Question: "The word 'recede' in the passage is closest in meaning to ____.", Options: []string{"withdraw", "accelerate", "transform", "multiply"}, CorrectAnswer: "withdraw", Explanation: "'Recede' means to move back or retreat, here describing shrinking use.", Topic: "Reading", Difficulty: "advanced", Passage: advancedPassage},
		{Question: "The author's attitude toward the claim that languages 'simply die' is ____.", Options: []string{"endorsing", "skeptical", "indifferent", "celebratory"}, CorrectAnswer: "skeptical", Explanation: "Calling the notion 'a convenient oversimplification' signals skepticism.", Topic: "Reading", Difficulty: "advanced", Passage: advancedPassage},

		// Tenses — beginner
		{Question: "What is the past tense of 'go'?", Options: []string{"goed", "went", "gone", "goes"}, CorrectAnswer: "went", Explanation: "'Went' is the past tense of the irregular verb 'go'.", Topic: "Tenses", Difficulty: "beginner"},
		{Question: "She ____ TV every evening.", Options: []string{"watch", "watches", "watching", "is watch"}, CorrectAnswer: "watches", Explanation: "Present simple third person singular adds -es: she watches.", Topic: "Tenses", Difficulty: "beginner"},
		{Question: "Look! It ____ outside.", Options: []string{"rains", "rain", "is raining", "rained"}, CorrectAnswer: "is raining", Explanation: "'Look!' signals an action happening now, so we use present continuous.", Topic: "Tenses", Difficulty: "beginner"},
		{Question: "We ____ to the park yesterday.", Options: []string{"go", "goes", "went", "going"}, CorrectAnswer: "went", Explanation: "'Yesterday' requires the past simple: went.", Topic: "Tenses", Difficulty: "beginner"},
		// Tenses — intermediate
		{Question: "By the time we arrived, the film ____.", Options: []string{"already started", "has already started", "had already started", "was already starting"}, CorrectAnswer: "had already started", Explanation: "Past perfect marks the earlier of two past events.", Topic: "Tenses", Difficulty: "intermediate"},
		{Question: "I ____ here since 2015.", Options: []string{"live", "am living", "have lived", "lived"}, CorrectAnswer: "have lived", Explanation: "'Since' with an unfinished period takes the present perfect.", Topic: "Tenses", Difficulty: "intermediate"},
		{Question: "This time tomorrow, we ____ over the Atlantic.", Options: []string{"fly", "will fly", "will be flying", "are flying"}, CorrectAnswer: "will be flying", Explanation: "Future continuous describes an action in progress at a future moment.", Topic: "Tenses", Difficulty: "intermediate"},
		{Question: "When I called, she ____ dinner.", Options: []string{"cooked", "was cooking", "has cooked", "cooks"}, CorrectAnswer: "was cooking", Explanation: "Past continuous shows the action in progress when the call interrupted it.", Topic: "Tenses", Difficulty: "intermediate"},
		// Tenses — advanced
		{Question: "By next June, she ____ at the firm for a decade.", Options: []string{"will work", "will have been working", "works", "will be working"}, CorrectAnswer: "will have been working", Explanation: "Future perfect continuous measures duration up to a future point.", Topic: "Tenses", Difficulty: "advanced"},
		{Question: "I'd rather you ____ anything about it for now.", Options: []string{"don't say", "didn't say", "won't say", "haven't said"}, CorrectAnswer: "didn't say", Explanation: "'Would rather' + another subject takes the past tense for present or future meaning.", Topic: "Tenses", Difficulty: "advanced"},
		{Question: "The train ____ at 6:40, so there is no time to lose.", Options: []string{"leaves", "is leaving", "will have left", "left"}, CorrectAnswer: "leaves", Explanation: "Timetabled future events take the present simple.", Topic: "Tenses", Difficulty: "advanced"},
		{Question: "He looked exhausted — he ____ all night.", Options: []string{"must have been studying", "must study", "should be studying", "can have studied"}, CorrectAnswer: "must have been studying", Explanation: "'Must have been + -ing' deduces an extended past activity from present evidence.", Topic: "Tenses", Difficulty: "advanced"},

		// Pronunciation — beginner
		{Question: "Which word rhymes with 'cat'?", Options: []string{"cut", "hat", "cot", "kite"}, CorrectAnswer: "hat", Explanation: "'Hat' and 'cat' share the same /æt/ ending sound.", Topic: "Pronunciation", Difficulty: "beginner"},
		{Question: "Which letter is silent in 'know'?", Options: []string{"k", "n", "o", "w"}, CorrectAnswer: "k", Explanation: "The 'k' in 'know' is not pronounced: /noʊ/.", Topic: "Pronunciation", Difficulty: "beginner"},
		{Question: "Which word has a different vowel sound?", Options: []string{"see", "tree", "bed", "key"}, CorrectAnswer: "bed", Explanation: "'See', 'tree' and 'key' share the /iː/ sound; 'bed' has /e/.", Topic: "Pronunciation", Difficulty: "beginner"},
		{Question: "How many syllables are in the word 'banana'?", Options: []string{"two", "three", "four", "one"}, CorrectAnswer: "three", Explanation: "Ba-na-na has three syllables.", Topic: "Pronunciation", Difficulty: "beginner"},
		// Pronunciation — intermediate
		{Question: "Where is the stress in the word 'photographer'?", Options: []string{"PHO-to-graph-er", "pho-TOG-ra-pher", "pho-to-GRAPH-er", "pho-to-graph-ER"}, CorrectAnswer: "pho-TOG-ra-pher", Explanation: "Stress falls on the second syllable: pho-TOG-ra-pher.", Topic: "Pronunciation", Difficulty: "intermediate"},
		{Question: "Which word has a silent 'b'?", Options: []string{"club", "debt", "robe", "cabin"}, CorrectAnswer: "debt", Explanation: "The 'b' in 'debt' is silent: /det/.", Topic: "Pronunciation", Difficulty: "intermediate"},
		{Question: "In which word is '-ed' pronounced /ɪd/?", Options: []string{"walked", "played", "wanted", "laughed"}, CorrectAnswer: "wanted", Explanation: "After /t/ or /d/, the -ed ending is pronounced as a separate syllable /ɪd/.", Topic: "Pronunciation", Difficulty: "intermediate"},
		{Question: "Which pair are minimal pairs?", Options: []string{"ship / sheep", "book / books", "run / running", "cat / dog"}, CorrectAnswer: "ship / sheep", Explanation: "'Ship' and 'sheep' differ by a single vowel sound, /ɪ/ versus /iː/.", Topic: "Pronunciation", Difficulty: "intermediate"},
		// Pronunciation — advanced
		{Question: "Which word shifts its stress when used as a verb instead of a noun?", Options: []string{"record", "table", "answer", "picture"}, CorrectAnswer: "record", Explanation: "REcord (noun) versus reCORD (verb) — a classic noun-verb stress shift.", Topic: "Pronunciation", Difficulty: "advanced"},
		{Question: "Which word contains the sound /ʒ/?", Options: []string{"measure", "machine", "church", "judge"}, CorrectAnswer: "measure", Explanation: "The 's' in 'measure' is pronounced /ʒ/, as in 'vision'.", Topic: "Pronunciation", Difficulty: "advanced"},
		{Question: "In connected speech, 'did you' is most often pronounced ____.", Options: []string{"/dɪd juː/", "/dɪdʒə/", "/dɪt juː/", "/diː juː/"}, CorrectAnswer: "/dɪdʒə/", Explanation: "The /d/ + /j/ sequence assimilates to /dʒ/ in casual speech.", Topic: "Pronunciation", Difficulty: "advanced"},
		{Question: "Which word does NOT have stress on the first syllable?", Options: []string{"comfortable", "vegetable", "hotel", "interesting"}, CorrectAnswer: "hotel", Explanation: "'Hotel' is stressed on the second syllable: ho-TEL.", Topic: "Pronunciation", Difficulty: "advanced"},
	}
}

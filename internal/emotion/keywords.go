package emotion

// keywords maps each label to the substrings that signal it. Matching is
// case-insensitive substring containment over the whole text.
var keywords = map[Label][]string{
	Joy:      {"happy", "joy", "excited", "grateful", "proud", "wonderful", "excellent", "amazing", "love", "success", "achievement", "celebrate", "thrilled"},
	Sadness:  {"sad", "unhappy", "depressed", "down", "lonely", "miserable", "devastated", "grief", "loss", "disappointed", "failed", "upset"},
	Anger:    {"angry", "furious", "rage", "mad", "frustrated", "irritated", "annoyed", "hateful", "disgusted", "hostile", "aggressive"},
	Fear:     {"fear", "afraid", "terrified", "anxious", "nervous", "worried", "scared", "panic", "dread", "phobia", "threatened"},
	Anxiety:  {"anxiety", "anxious", "stress", "stressed", "tension", "worry", "uneasy", "restless", "overwhelmed", "nervous", "pressured"},
	Surprise: {"surprised", "shocked", "amazed", "astonished", "unexpected", "wow", "incredible", "stunning"},
	Neutral:  {"okay", "fine", "alright", "normal", "nothing", "whatever", "sure"},
}

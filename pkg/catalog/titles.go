package catalog

var titleSuggestions = []string{
	"🔥 সেরা ভাইরাল লুক!",
	"✨ নতুন স্টাইল ২০২৫",
	"📸 প্রফেশনাল ফটো এডিটিং",
	"😲 অবিশ্বাস্য পরিবর্তন দেখুন",
	"🎨 অসাধারণ ডিজাইন টিপস",
}

// SuggestTitles returns the built-in thumbnail title ideas.
func SuggestTitles() []string {
	out := make([]string, len(titleSuggestions))
	copy(out, titleSuggestions)
	return out
}

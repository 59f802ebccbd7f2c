// Package main provides localization for the hemostyle CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Bengali translations for CLI messages.
	l10n.Register("bn", l10n.LexiconMap{
		// Root command
		"Restyle portraits and turn them into thumbnails and social posts.": "পোর্ট্রেট নতুন স্টাইলে সাজিয়ে থাম্বনেইল ও সোশ্যাল পোস্ট তৈরি করুন।",

		// Version command
		"hemostyle version %s": "hemostyle সংস্করণ %s",

		// Runtime messages
		"Rendering %s (%s preset)...":   "%s রেন্ডার করা হচ্ছে (%s প্রিসেট)...",
		"Output saved to %s":            "আউটপুট %s এ সংরক্ষিত হয়েছে",
		"Interrupted, shutting down...": "বাধাপ্রাপ্ত, বন্ধ করা হচ্ছে...",

		// Font messages
		"The font cannot draw this text; choose one that covers it with --font": "এই ফন্টে লেখাটি আঁকা যায় না; --font দিয়ে উপযুক্ত ফন্ট বেছে নিন",

		// Compare messages
		"Creating comparison: %s + %s → %s": "তুলনা তৈরি হচ্ছে: %s + %s → %s",

		// Styles command
		"Styles":            "স্টাইল",
		"Aspect ratios":     "অনুপাত",
		"Title suggestions": "শিরোনামের পরামর্শ",

		// Summary output flag
		"Summary saved to %s":         "সারাংশ %s এ সংরক্ষিত হয়েছে",
		"Failed to write summary: %s": "সারাংশ লেখা যায়নি: %s",

		// Summary content
		"Render Summary": "রেন্ডার সারাংশ",
		"Generated at":   "তৈরির সময়",
		"Item":           "বিষয়",
		"Value":          "মান",

		// Source section
		"Source":    "উৎস",
		"File":      "ফাইল",
		"Size":      "আকার",
		"Format":    "ফরম্যাট",
		"File Size": "ফাইলের আকার",

		// Style section
		"Style":          "স্টাইল",
		"Original photo": "মূল ছবি",
		"Preset":         "প্রিসেট",
		"Category":       "বিভাগ",
		"Backend":        "ব্যাকএন্ড",
		"Recipe":         "রেসিপি",
		"Fallback":       "বিকল্প",
		"Duration":       "সময়",

		// Canvas section
		"Canvas":       "ক্যানভাস",
		"Aspect Ratio": "অনুপাত",
		"Canvas Size":  "ক্যানভাসের আকার",
		"Scale":        "স্কেল",
		"Text":         "লেখা",
		"No text":      "কোনো লেখা নেই",

		// Output section
		"Output": "আউটপুট",
		"Hash":   "হ্যাশ",
	})
}

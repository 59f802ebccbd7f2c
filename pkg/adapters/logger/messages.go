package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("bn", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting pipeline":               "পাইপলাইন শুরু হচ্ছে",
		"Pipeline completed successfully": "পাইপলাইন সফলভাবে সম্পন্ন হয়েছে",
		"Output saved to %s":              "আউটপুট %s এ সংরক্ষিত হয়েছে",
		"Loaded %dx%d %s photo":           "%dx%d %s ছবি লোড হয়েছে",
		"Applying style %s (%s mode)":     "স্টাইল %s প্রয়োগ করা হচ্ছে (%s মোড)",
		"Canvas composed: %dx%d, %d text lines": "ক্যানভাস তৈরি: %dx%d, %d লাইন লেখা",
		"Interrupted, shutting down...":   "বাধাপ্রাপ্ত, বন্ধ করা হচ্ছে...",

		// Orchestration level messages (warn, error)
		"Used local filter %s instead of the generative service": "জেনারেটিভ সার্ভিসের বদলে লোকাল ফিল্টার %s ব্যবহার করা হয়েছে",
		"Failed to read input: %s":        "ইনপুট পড়া যায়নি: %s",
		"Failed to decode input: %s":      "ইনপুট ডিকোড করা যায়নি: %s",
		"Failed to apply style: %s":       "স্টাইল প্রয়োগ করা যায়নি: %s",
		"Failed to compose canvas: %s":    "ক্যানভাস তৈরি করা যায়নি: %s",
		"Failed to export image: %s":      "ছবি এক্সপোর্ট করা যায়নি: %s",
		"Failed to write output: %s":      "আউটপুট লেখা যায়নি: %s",
		"Failed to save debug output: %s": "ডিবাগ আউটপুট সংরক্ষণ করা যায়নি: %s",
		"Failed to save debug output: %v": "ডিবাগ আউটপুট সংরক্ষণ করা যায়নি: %v",

		// Transform stage
		"Requesting %s transform for style %s":             "স্টাইল %[2]s এর জন্য %[1]s রূপান্তরের অনুরোধ করা হচ্ছে",
		"Generative transform failed, using local filters: %v": "জেনারেটিভ রূপান্তর ব্যর্থ, লোকাল ফিল্টার ব্যবহার করা হচ্ছে: %v",

		// Filter stage
		"Directive matched recipe %s":                 "নির্দেশনা রেসিপি %s এর সাথে মিলেছে",
		"Applying recipe %s to %dx%d image":           "%[2]dx%[3]d ছবিতে রেসিপি %[1]s প্রয়োগ করা হচ্ছে",
		"Unknown recipe %s, passing image through":    "অজানা রেসিপি %s, ছবি অপরিবর্তিত রাখা হচ্ছে",

		// Compose and export stages
		"Canvas %dx%d, scale %.3f, %d text lines": "ক্যানভাস %dx%d, স্কেল %.3f, %d লাইন লেখা",
		"Encoded %dx%d canvas as %s: %d bytes":    "%dx%d ক্যানভাস %s হিসেবে এনকোড হয়েছে: %d বাইট",

		// Batch stage
		"Rendering %d aspect ratios with %d workers": "%d টি অনুপাত %d টি ওয়ার্কারে রেন্ডার করা হচ্ছে",
		"Batch completed":                           "ব্যাচ সম্পন্ন হয়েছে",

		// Juxtapose
		"Before %dx%d, after %dx%d":        "আগে %dx%d, পরে %dx%d",
		"Comparison saved to %s (%dx%d)":   "তুলনা %s এ সংরক্ষিত হয়েছে (%dx%d)",

		// Server
		"Listening on %s":         "%s এ শোনা হচ্ছে",
		"Server stopped":          "সার্ভার বন্ধ হয়েছে",
		"Created session %s":      "সেশন %s তৈরি হয়েছে",
		"Pruned %d idle sessions": "%d টি নিষ্ক্রিয় সেশন মুছে ফেলা হয়েছে",
		"Request failed: %v":      "অনুরোধ ব্যর্থ: %v",
	})
}

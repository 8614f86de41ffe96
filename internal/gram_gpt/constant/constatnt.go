package constant

const (
	EMOJI_SEEDLING     = "\U0001F331"           //🌱
	EMOJI_THINKING     = "\U0001F914"           //🤔
	EMOJI_WARNING      = "\U000026A0\U0000FE0F" //⚠️
	EMOJI_WASTEBASKET  = "\U0001F5D1\U0000FE0F" //🗑️
	EMOJI_PAGE_FACING  = "\U0001F4C4"           //📄
	EMOJI_FRAMED_IMAGE = "\U0001F5BC\U0000FE0F" //🖼️

	// Persona is the fixed system instruction attached to every conversational request.
	Persona = "তুমি গ্রাম জিপিটি, গ্রামের মানুষের একজন বন্ধু ও সহায়ক। তোমার কাজ হলো কৃষি, আবহাওয়া, গ্রামের গল্প, গান এবং দৈনন্দিন জীবনের নানা বিষয়ে সহজ ভাষায় তথ্য ও পরামর্শ দেওয়া। প্রয়োজনে ছবি তৈরি করে বা বিশ্লেষণ করে সাহায্য করা।"

	// PersonaToolHint is appended to the persona when the weather tool is declared.
	PersonaToolHint = "কেউ কোনো এলাকার আবহাওয়া জানতে চাইলে অবশ্যই 'getWeather' টুল ব্যবহার করবে, তারপর সহজ বাংলায় সারসংক্ষেপ দেবে এবং আবহাওয়ার একটি ছবি তৈরি করবে।"

	MSG_THINKING           = "ভাবছি... " + EMOJI_THINKING
	MSG_WELCOME            = EMOJI_SEEDLING + " গ্রামজিপিটি, আপনার গ্রামীণ বন্ধু। প্রশ্ন লিখুন বা ছবি পাঠান।"
	MSG_EMPTY_PROMPT       = "দয়া করে আপনার প্রশ্নটি লিখুন অথবা একটি ছবি দিন।"
	MSG_GENERIC_ERROR      = "দুঃখিত, একটি সমস্যা হয়েছে। আবার চেষ্টা করুন।"
	MSG_NO_ANSWER          = "কোনো উত্তর পাওয়া যায়নি।"
	MSG_MISSING_API_KEY    = "API কী সেট করা নেই। অনুগ্রহ করে আপনার পরিবেশের চলক (environment variable) কনফিগার করুন।"
	MSG_SAFETY_BLOCKED     = "নিরাপত্তাজনিত কারণে অনুরোধটি আটকে দেওয়া হয়েছে।"
	MSG_BLOCKED            = "অনুরোধটি আটকে দেওয়া হয়েছে। অন্যভাবে চেষ্টা করুন।"
	MSG_ATTACHMENT_ERROR   = "ছবিটি পড়া যায়নি। অন্য একটি ছবি দিয়ে চেষ্টা করুন।"
	MSG_UNSUPPORTED        = "এই মডেল ছবি নিয়ে কাজ করতে পারে না।"
	MSG_TURN_IN_FLIGHT     = "আগের প্রশ্নের উত্তর এখনও তৈরি হচ্ছে, একটু অপেক্ষা করুন।"
	MSG_HISTORY_CLEARED    = EMOJI_WASTEBASKET + " ইতিহাস মুছে ফেলা হয়েছে।"
	MSG_HISTORY_EMPTY      = "এখনও কোনো কথোপকথনের ইতিহাস নেই।"
	MSG_EXPORT_FAILED      = "ফাইল তৈরি করা যায়নি।"
	MSG_AUTH_EMPTY         = "অনুগ্রহ করে ইমেল এবং পাসওয়ার্ড দিন।"
	MSG_AUTH_INVALID_EMAIL = "অনুগ্রহ করে একটি সঠিক ইমেল ঠিকানা লিখুন।"
	MSG_AUTH_WRONG         = "ইমেল অথবা পাসওয়ার্ড ভুল হয়েছে।"
	MSG_AUTH_EMAIL_EXISTS  = "এই ইমেল ঠিকানাটি ইতিমধ্যেই ব্যবহার করা হয়েছে।"
	MSG_AUTH_WEAK_PASSWORD = "পাসওয়ার্ডটি কমপক্ষে ৬ অক্ষরের হতে হবে।"
	MSG_AUTH_FAILED        = "একটি সমস্যা হয়েছে। অনুগ্রহ করে আবার চেষ্টা করুন।"

	PDF_LABEL_PROMPT = "প্রশ্ন"
	PDF_LABEL_ANSWER = "উত্তর"

	COMMAND_START   = "start"
	COMMAND_CLEAR   = "clear"
	COMMAND_HISTORY = "history"
)

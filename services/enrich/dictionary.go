package enrich

// hindiDict maps common Hindi words to English search keywords, covering
// the most frequently searched topics. Glosses may hold several words so
// a single hit widens the retrievable vocabulary.
var hindiDict = map[string]string{
	// Nature / plants
	"कमल": "lotus flower", "गुलाब": "rose flower", "पत्ता": "leaf",
	"पेड़": "tree", "फूल": "flower", "नदी": "river",
	"पहाड़": "mountain hill", "आसमान": "sky", "सूरज": "sun",
	"चाँद": "moon", "तारा": "star", "बादल": "cloud",
	"बारिश": "rain", "पानी": "water", "आग": "fire",

	// People and relations
	"माँ": "mother mom", "पिता": "father dad", "भाई": "brother",
	"बहन": "sister", "बच्चा": "child baby", "दोस्त": "friend",
	"परिवार": "family", "लड़का": "boy man", "लड़की": "girl woman",

	// Places
	"घर": "home house", "स्कूल": "school", "अस्पताल": "hospital",
	"बाजार": "market", "मंदिर": "temple", "मस्जिद": "mosque",
	"शहर": "city", "गाँव": "village", "सड़क": "road street",

	// Documents / ID
	"आधार": "aadhaar id card", "पासपोर्ट": "passport", "नाम": "name",
	"पता": "address", "जन्म": "birth date", "फोन": "phone mobile",
	"ईमेल": "email",

	// Food
	"खाना": "food meal eat", "चाय": "tea", "दूध": "milk",
	"रोटी": "bread roti", "चावल": "rice", "दाल": "lentil dal",
	"सब्जी": "vegetable", "फल": "fruit", "मिठाई": "sweets dessert",

	// Common adjectives
	"बड़ा": "big large", "छोटा": "small little", "अच्छा": "good nice",
	"बुरा": "bad", "नया": "new", "पुराना": "old",
	"लाल": "red", "नीला": "blue", "हरा": "green",
	"सफेद": "white", "काला": "black", "पीला": "yellow",

	// Numbers / time
	"एक": "one", "दो": "two", "तीन": "three", "चार": "four", "पाँच": "five",
	"आज": "today", "कल": "tomorrow yesterday", "अभी": "now",
	"सुबह": "morning", "शाम": "evening", "रात": "night",

	// Actions
	"जाना": "go", "आना": "come", "देखना": "see look",
	"पीना": "drink", "पढ़ना": "read", "लिखना": "write", "बोलना": "speak say",
}

package bot

import "fmt"

// Reply keyboard buttons.
const (
	ButtonMoreTrivia = "Tell me some more trivia!"
	ButtonMoreDetail = "Tell me more about this!"
	ButtonLike       = "I like this fact!"
)

// Buttons is the reply keyboard attached to fact messages, one button per row.
var Buttons = []string{ButtonMoreTrivia, ButtonMoreDetail, ButtonLike}

const (
	msgGreeting = "Hi, I am a bot that loves to share trivia! I get my information from Wikipedia. " +
		"Nevertheless, since I am based on ChatGPT, I may sometimes misunderstand some things. " +
		"You can always ask me to tell you more about the latest trivia fact and I will give you the original info from Wikipedia!"
	msgIntro       = "Here's a random piece of trivia I found on Wikipedia for you:"
	msgNoTrivia    = "Sorry, I could not find any trivia right now. Please try again in a little while."
	msgForcedFail  = "Sorry, I could not produce any trivia on this topic. This may be because I could not find any information on this or because I'm out of credits for the month. Please try something else or use the interactive buttons."
	msgButtonsHint = "If you don't see the buttons, you can tap the icon with the four circles at the top right of your keyboard to open the menu."
	msgIdleHint    = "I haven't told you any trivia yet! Tap \"" + ButtonMoreTrivia + "\" or write me a topic."
	msgSaveFailed  = "Sorry, I could not save this fact right now. Please try again later."
)

func msgLiked(title string) string {
	return fmt.Sprintf("Thanks! I will share this fact about %s with other users!", title)
}

func msgDetailFailed(title string) string {
	return fmt.Sprintf("Sorry, I could not load the Wikipedia article about %s right now.", title)
}

var advice = []string{
	"You can write me the name of a topic that you want to hear trivia about and I will do my best to find an interesting fact about it.",
	"If you find a fact particularly interesting, please let me know via the button, so I can share it with other users.",
	"Please note that I am based on ChatGPT so I may make mistakes and misunderstand some things. You can always ask me to tell you more about a topic to check my sources.",
	"If you ask me to tell you more about a topic twice, I will give you a link to the original Wikipedia article.",
	"When people tell me that they like a particular piece of trivia, I save it to a database. If I run out of OpenAI credits for the month, I can still show these facts!",
	"Just write me a topic that interests you or let me choose a random trivia fact!",
	"By telling me when a trivia fact is interesting, you can help me improve for everyone :)",
	"That's interesting, huh?",
}

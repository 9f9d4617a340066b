package game

import "math/rand/v2"

var cheers = []string{
	"Good job!", "Excellent!", "Well done!", "Nice work!", "Nailed it!",
	"You got it!", "Right on!", "Perfect!", "Bravo!", "Fantastic!",
	"Great job!", "Super!", "You rock!", "Incredible!", "Amazing!",
	"Sweet!", "Genius!", "That's it!", "Brilliant!", "Sharp thinking!",
	"That's right!", "So smart!", "You did it!", "Awesome!", "Keep it up!",
	"Nicely done!", "Good thinking!", "Clever!", "You're on fire!", "Bullseye!",
	"Spot on!", "Top notch!", "Flawless!", "Terrific!", "Splendid!",
}

var emojis = []string{
	"👍👍👍", "👏👏👏", "✨👍✨", "💯👍💯", "🎉👍🎉", "🚀👍🚀", "🔥🔥🔥",
	"🏆🏆🏆", "😎😎😎", "🌟🌟🌟", "🥇🥇🥇",
}

// SuccessMessage returns a random cheer for a correct answer.
func SuccessMessage() string {
	return cheers[rand.IntN(len(cheers))] + " " + emojis[rand.IntN(len(emojis))]
}

package handlers

const welcomeText = `Welcome to the study accountability bot!

Set up your profile first:
- /setgoal [hours] - weekly goal (e.g. /setgoal 20)
- /settime [HH:MM] - daily check-in time (e.g. /settime 23:00)
- /setreminders [HH:MM] [HH:MM] - study start/end reminders

Day to day:
- /mystats - your statistics
- /checkin - check in now
- /skip - skip today (day off)
- /weekly - weekly report
- /help - full command list`

const helpText = `Commands:

Setup:
- /start - register
- /setgoal [hours] - weekly goal, 0-168 (e.g. /setgoal 20)
- /settime [HH:MM] - check-in time (e.g. /settime 23:00)
- /setreminders [HH:MM] [HH:MM] - study start/end reminders

Daily:
- /checkin - manual check-in
- /mystats - personal statistics
- /skip - record today as a day off

Reports:
- /weekly - weekly report on demand
- /help - this message`

const (
	transientErrorText = "Something went wrong saving that, please try again."
	notRegisteredText  = "Use /start to register first!"
	wrongTargetText    = "This check-in isn't for you!"
)

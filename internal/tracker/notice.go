package tracker

// Level is the severity of a message box.
type Level string

const (
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelQuestion Level = "question"
	LevelCritical Level = "critical"
)

// Notice is a message shown to the user.
type Notice struct {
	Level   Level
	Title   string
	Message string
}

const (
	TitleDataError    = "Data Error"
	TitleNoSelection  = "No Expenses Chosen"
	TitleConfirmation = "Confirmation"
	TitleError        = "Error"

	MsgEmptyCategory   = "Category was Empty. Add Data"
	MsgUnknownCategory = "Category is not one of the listed categories"
	MsgInvalidAmount   = "Amount is not a number"
	MsgChooseToDelete  = "Please Choose an Expense to Delete!"
	MsgChooseToEdit    = "Please Choose an Expense to Edit!"
	MsgConfirmDelete   = "Are you sure to Delete Expenses?"
	MsgSelectedData    = "Selected Data was %s"
)

func warning(title, msg string) *Notice {
	return &Notice{Level: LevelWarning, Title: title, Message: msg}
}

func question(title, msg string) *Notice {
	return &Notice{Level: LevelQuestion, Title: title, Message: msg}
}

// Critical builds the notice shown for failures the user cannot fix.
func Critical(msg string) *Notice {
	return &Notice{Level: LevelCritical, Title: TitleError, Message: msg}
}

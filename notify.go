package iconic

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/esimov/iconic/utils"
)

// NotificationKind distinguishes the outcome reported to the user.
type NotificationKind int

const (
	Success NotificationKind = iota
	GenerationFailed
	DownloadFailed
)

func (k NotificationKind) String() string {
	switch k {
	case Success:
		return "success"
	case GenerationFailed:
		return "generation failed"
	case DownloadFailed:
		return "download failed"
	}
	return "unknown"
}

// Notification is the single terminal message emitted by every export.
type Notification struct {
	Kind        NotificationKind
	Title       string
	Description string
	Err         error
}

// Notifier consumes the export outcome, e.g. a toast or a log line.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// newNotification maps the export outcome onto the user facing message.
// Failures of the image source are told apart from the packaging ones.
func newNotification(err error) Notification {
	switch {
	case err == nil:
		return Notification{
			Kind:        Success,
			Title:       "Download complete",
			Description: "Icon pack downloaded successfully!",
		}
	case IsSourceError(err):
		return Notification{
			Kind:        GenerationFailed,
			Title:       "Generation failed",
			Description: "Failed to load the source image. Please try again.",
			Err:         err,
		}
	default:
		return Notification{
			Kind:        DownloadFailed,
			Title:       "Download failed",
			Description: "Failed to create the icon pack. Please try again.",
			Err:         err,
		}
	}
}

// LogNotifier prints the notifications as colored log lines.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier returns a notifier writing to w, stderr when nil.
func NewLogNotifier(w io.Writer) *LogNotifier {
	if w == nil {
		w = os.Stderr
	}
	return &LogNotifier{logger: log.New(w, "", 0)}
}

// Notify implements the Notifier interface.
func (n *LogNotifier) Notify(msg Notification) {
	if msg.Kind == Success {
		n.logger.Printf("%s %s",
			utils.DecorateText(msg.Title, utils.SuccessMessage),
			utils.DecorateText(msg.Description, utils.DefaultMessage),
		)
		return
	}
	n.logger.Printf("%s %s%s",
		utils.DecorateText(msg.Title, utils.ErrorMessage),
		utils.DecorateText(msg.Description, utils.DefaultMessage),
		utils.DecorateText(fmt.Sprintf("\n\tReason: %v", msg.Err), utils.DefaultMessage),
	)
}

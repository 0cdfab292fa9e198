package audio

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

var ErrSelectionAborted = errors.New("device selection aborted")

type pickerAction int

const (
	pickerNone pickerAction = iota
	pickerConfirm
	pickerAbort
)

// pickerKey applies one keypress (raw terminal bytes) to the cursor.
func pickerKey(cursor, count int, key []byte) (int, pickerAction) {
	if len(key) == 1 {
		switch key[0] {
		case 13: // Enter
			return cursor, pickerConfirm
		case 3, 'q': // Ctrl+C
			return cursor, pickerAbort
		case 'j':
			if cursor < count-1 {
				cursor++
			}
		case 'k':
			if cursor > 0 {
				cursor--
			}
		}
	} else if len(key) == 3 && key[0] == 0x1b && key[1] == '[' {
		switch key[2] {
		case 'A': // Up arrow
			if cursor > 0 {
				cursor--
			}
		case 'B': // Down arrow
			if cursor < count-1 {
				cursor++
			}
		}
	}
	return cursor, pickerNone
}

// SelectDevice presents an interactive output device picker.
// If only one device is available, it returns that device without prompting.
func SelectDevice(ctx Context) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no playback devices found")
	}

	if len(devices) == 1 {
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	cursor := 0
	renderList := func() {
		fmt.Print("\r\x1b[J")
		fmt.Print("Select output device (↑/↓, Enter to confirm):\r\n\r\n")
		for i, d := range devices {
			btTag := ""
			if IsBluetooth(d.Name) {
				btTag = " \x1b[33m[⚠ may drop to mono]\x1b[0m"
			}
			if i == cursor {
				fmt.Printf("  \x1b[1;36m▶ %s%s\x1b[0m\r\n", d.Name, btTag)
			} else {
				fmt.Printf("    %s%s\r\n", d.Name, btTag)
			}
		}
	}

	renderList()

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		var action pickerAction
		cursor, action = pickerKey(cursor, len(devices), buf[:n])
		switch action {
		case pickerConfirm:
			fmt.Print("\r\n")
			return &devices[cursor], nil
		case pickerAbort:
			fmt.Print("\r\n")
			return nil, ErrSelectionAborted
		}

		lines := len(devices) + 2
		fmt.Printf("\x1b[%dA", lines)
		renderList()
	}
}

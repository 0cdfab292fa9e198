package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"binaural/session"
)

func statusLine(s session.Snapshot) string {
	return fmt.Sprintf("state=%s carrier=%g source=%s beat=%g left=%g right=%g volume=%g",
		s.State, s.Carrier, s.Source, s.Beat, s.LeftHz, s.RightHz, s.Volume)
}

// runTestMode drives the controller from line commands, one reply per line:
//
//	CARRIER <hz> | PRESET <name> | CUSTOM <hz> | CLEAR | VOLUME <0-1>
//	START | STOP | STATUS | SLEEP <ms> | QUIT
func runTestMode(ctrl *session.Controller, in io.Reader, out io.Writer) int {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		reply, quit := execCommand(ctrl, line)
		if reply != "" {
			fmt.Fprintln(out, reply)
		}
		if quit {
			return 0
		}
	}
	return 0
}

func execCommand(ctrl *session.Controller, line string) (reply string, quit bool) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	num := func() (float64, error) {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return 0, fmt.Errorf("bad number %q", arg)
		}
		return v, nil
	}
	apply := func(ch session.Change) string {
		if err := ctrl.Apply(ch); err != nil {
			return "error: " + err.Error()
		}
		return "ok"
	}

	switch strings.ToUpper(cmd) {
	case "CARRIER":
		v, err := num()
		if err != nil {
			return "error: " + err.Error(), false
		}
		return apply(session.CarrierChange{Hz: v}), false
	case "PRESET":
		return apply(session.PresetChange{Name: arg}), false
	case "CUSTOM":
		v, err := num()
		if err != nil {
			return "error: " + err.Error(), false
		}
		return apply(session.CustomBeatChange{Hz: v}), false
	case "CLEAR":
		return apply(session.ClearBeatChange{}), false
	case "VOLUME":
		v, err := num()
		if err != nil {
			return "error: " + err.Error(), false
		}
		return apply(session.VolumeChange{Volume: v}), false
	case "START":
		if ctrl.Start() {
			return "playing", false
		}
		return "refused", false
	case "STOP":
		ctrl.Stop()
		return "idle", false
	case "STATUS":
		return statusLine(ctrl.Snapshot()), false
	case "SLEEP":
		if ms, err := strconv.Atoi(arg); err == nil {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		}
		return "", false
	case "QUIT":
		return "bye", true
	default:
		return fmt.Sprintf("error: unknown command %q", cmd), false
	}
}

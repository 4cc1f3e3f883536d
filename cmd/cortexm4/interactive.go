// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/term"

	"github.com/proxin187/cortex-m4/internal/m4"
)

var savedTermState *term.State

// setupTerminal puts stdin in raw mode before tview takes the screen,
// mirroring the teacher's save/restore pair for its UART console.
func setupTerminal() {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return
	}
	state, err := term.GetState(int(os.Stdin.Fd()))
	if err != nil {
		return
	}
	savedTermState = state
	term.MakeRaw(int(os.Stdin.Fd()))
}

func restoreTerminal() {
	if savedTermState != nil && term.IsTerminal(int(os.Stdin.Fd())) {
		term.Restore(int(os.Stdin.Fd()), savedTermState)
	}
}

const disasmWindow = 12

// runInteractive drives the processor through a register/disassembly
// TUI: Space toggles run/pause, Enter single-steps, Esc quits (spec §6).
func runInteractive(args []string) {
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	traceFile := fs.String("trace", "", "write execution trace to file")
	debugLong := fs.Bool("debug", false, "start paused")
	debugShort := fs.Bool("d", false, "start paused (shorthand for -debug)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s interactive [options] <image-file>\n", os.Args[0])
		fs.PrintDefaults()
		os.Exit(1)
	}
	path := fs.Arg(0)
	startPaused := *debugLong || *debugShort

	p := m4.NewProcessor()
	if *traceFile != "" {
		f, err := os.Create(*traceFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		p.Tracer = m4.NewTracer(f)
	}
	if err := loadImage(p, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}
	p.Reset()

	setupTerminal()
	defer restoreTerminal()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		restoreTerminal()
		os.Exit(130)
	}()

	app := tview.NewApplication()

	regTable := tview.NewTable().SetBorders(false)
	regTable.SetBorder(true).SetTitle(" Registers ")

	disasmList := tview.NewList().ShowSecondaryText(false)
	disasmList.SetBorder(true).SetTitle(" Disassembly ")

	status := tview.NewTextView().SetDynamicColors(true)
	status.SetBorder(true).SetTitle(" Status (Space=run/pause Enter=step Esc=quit) ")

	running := false
	var stopCh chan struct{}

	refresh := func() {
		snap := p.Snapshot()
		regTable.Clear()
		for i := 0; i < 16; i++ {
			regTable.SetCell(i, 0, tview.NewTableCell(regLabel(i)).SetTextColor(tcell.ColorYellow))
			regTable.SetCell(i, 1, tview.NewTableCell(fmt.Sprintf("0x%08X", snap.Regs[i])))
		}

		disasmList.Clear()
		addr := snap.Regs[m4.SlotPC]
		for i := 0; i < disasmWindow; i++ {
			h1 := p.Bus.ReadU16(addr)
			var inst m4.Instruction
			if m4.IsThumb32(h1) {
				h2 := p.Bus.ReadU16(addr + 2)
				inst = m4.DecodeThumb32(h1, h2, addr)
			} else {
				inst = m4.DecodeThumb16(h1, addr)
			}
			disasmList.AddItem(fmt.Sprintf("0x%08X  %s", addr, m4.Disassemble(inst)), "", 0, nil)
			addr += uint32(inst.Size)
		}

		runState := "paused"
		if running {
			runState = "running"
		}
		fmt.Fprintf(status, "[yellow]mode:[white] %s  [yellow]state:[white] %s", snap.Mode, runState)
	}

	startRunning := func() {
		if running {
			return
		}
		running = true
		stopCh = make(chan struct{})
		ch := stopCh
		go func() {
			ticker := time.NewTicker(10 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ch:
					return
				case <-ticker.C:
					app.QueueUpdateDraw(func() {
						if !running {
							return
						}
						for i := 0; i < 1000; i++ {
							p.Step()
						}
						refresh()
					})
				}
			}
		}()
	}

	stopRunning := func() {
		if !running {
			return
		}
		running = false
		close(stopCh)
	}

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc:
			stopRunning()
			app.Stop()
			return nil
		case tcell.KeyEnter:
			if !running {
				p.Step()
				refresh()
			}
			return nil
		case tcell.KeyRune:
			if event.Rune() == ' ' {
				if running {
					stopRunning()
				} else {
					startRunning()
				}
				refresh()
				return nil
			}
		}
		return event
	})

	flex := tview.NewFlex().
		AddItem(regTable, 28, 0, false).
		AddItem(disasmList, 0, 1, false)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(flex, 0, 1, false).
		AddItem(status, 3, 0, false)

	refresh()
	if !startPaused {
		startRunning()
	}

	if err := app.SetRoot(root, true).Run(); err != nil {
		restoreTerminal()
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}
}

func regLabel(slot int) string {
	switch slot {
	case m4.SlotSP:
		return "SP"
	case m4.SlotLR:
		return "LR"
	case m4.SlotPC:
		return "PC"
	default:
		return fmt.Sprintf("R%d", slot)
	}
}

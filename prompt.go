// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

// PromptResult is an Interactor's answer to a batch of prompts.
type PromptResult int8

const (
	// PromptPending means no answer is available yet; the negotiator
	// suspends and polls again on its next Step.
	PromptPending PromptResult = iota
	// PromptAnswered means every prompt's Result has been filled in.
	PromptAnswered
	// PromptCancelled means the user declined; the handshake is
	// aborted, which is not a protocol error.
	PromptCancelled
)

// Prompt is a single question put to the user.
type Prompt struct {
	Label string
	// Echo is false for secrets; whatever UI serves the prompt must not
	// display the typed answer.
	Echo   bool
	Result []byte
}

// Prompts is one batch of questions shown together under a title, e.g. a
// username/password pair. It is owned by exactly one negotiator while
// outstanding and released via Free once the answer has been applied or
// the handshake is torn down.
type Prompts struct {
	Title   string
	Prompts []*Prompt
}

//go:norace
func NewPrompts(title string) *Prompts {
	return &Prompts{Title: title}
}

// Add appends a prompt and returns its index.
//
//go:norace
func (ps *Prompts) Add(label string, echo bool) int {
	ps.Prompts = append(ps.Prompts, &Prompt{Label: label, Echo: echo})
	return len(ps.Prompts) - 1
}

// Free zeroes all results. Callers drop the Prompts afterwards.
//
//go:norace
func (ps *Prompts) Free() {
	for _, p := range ps.Prompts {
		memclr(p.Result)
		p.Result = nil
	}
	ps.Prompts = nil
}

// Interactor supplies interactive credentials. GetUserPass may answer
// immediately or return PromptPending, in which case the negotiator
// suspends and the driver re-enters it once an answer exists. A blocking
// driver such as Dialer requires an Interactor that never returns
// PromptPending.
type Interactor interface {
	GetUserPass(ps *Prompts) PromptResult
}

package main

import (
	"strings"

	"lingo-engine/internal/textproc"
	"lingo-engine/internal/translator"
	"lingo-engine/internal/vocab"
)

// passthroughEngine is the stand-in engine for deployments that have not
// linked a real model yet: it copies tokens through, marking anything missing
// from the target vocabulary. Real engines implement translator.Engine and
// replace this in the factory wiring.
type passthroughEngine struct {
	device translator.DeviceID
	vocabs *vocab.Set
}

func newPassthroughEngine(device translator.DeviceID, vocabs *vocab.Set) translator.Engine {
	return &passthroughEngine{device: device, vocabs: vocabs}
}

func (e *passthroughEngine) Init() error {
	return nil
}

func (e *passthroughEngine) Translate(segments []textproc.Segment) ([]string, error) {
	target := e.vocabs.Target()
	outs := make([]string, len(segments))
	for i, seg := range segments {
		toks := make([]string, len(seg))
		for j, tok := range seg {
			if target.ID(tok) < 0 {
				toks[j] = "<unk>"
				continue
			}
			toks[j] = tok
		}
		outs[i] = strings.Join(toks, " ")
	}
	return outs, nil
}

// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/versig/versig/cmd/versig/cli"
	"github.com/versig/versig/pkg/tracing"
	"github.com/versig/versig/pkg/verify"
)

type ExitCoder interface {
	error
	ExitCode() int
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("versig: ")
	os.Exit(run(os.Args[1:]))
}

func run(args []string) (code int) {
	if err := tracing.InitFromEnv(); err != nil {
		log.Printf("warning: tracing disabled: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracing.Shutdown(ctx)
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("internal error: %v", r)
			code = verify.ExitBadLogic
		}
	}()

	cmd := cli.New()
	args, warnings := cli.TranslateLegacyArgs(cmd, args)
	for _, w := range warnings {
		log.Print(w)
	}
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		var ec ExitCoder
		if errors.As(err, &ec) {
			log.Printf("error during command execution: %v", err)
			return ec.ExitCode()
		}
		log.Printf("error during command execution: %v", err)
		return verify.ExitGeneric
	}
	return verify.ExitOK
}

package main

import (
	"fmt"
	"os"

	"github.com/ostafen/rz4/cmd/cmd"
	"github.com/ostafen/rz4/internal/env"
)

func main() {
	PrintLogo()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func PrintLogo() {
	fmt.Println("        _  _  ")
	fmt.Println(" _ __ _| || | ")
	fmt.Println("| '__|_  / || |_")
	fmt.Println("| |   / /|__   _|")
	fmt.Println("|_|  /___|  |_|  ")
	fmt.Println()
	fmt.Println("RIFF/WAVE stream scanner and extractor")
	fmt.Println()
	fmt.Printf("Version:   %s\n", env.Version)
	fmt.Printf("Commit:    %s\n", env.CommitHash)
	fmt.Printf("Build Time: %s\n", env.BuildTime)
	fmt.Println(" ")
}

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// -----------------------------------------------------------------------------
// Node CMD Prompt

var actionOpts = []string{
	"🔗 Connect to a party",
	"💬 Send a message",
	"🔢 Submit my numbers",
	"✖️  Multiply",
	"🧮 Reconstruct",
	"📋 Status",
	"🍃 Exit",
}

var actions = map[string]func(*Node) error{
	actionOpts[0]: connect,
	actionOpts[1]: sendMessage,
	actionOpts[2]: submitNumbers,
	actionOpts[3]: multiply,
	actionOpts[4]: reconstruct,
	actionOpts[5]: showStatus,
	actionOpts[6]: exitNode,
}

// -----------------------------------------------------------------------------
// Perform actions

func performActions(node *Node) error {
	prompt := &survey.Select{
		Message: "What do you want to do ?",
		Options: actionOpts,
	}

	var action string
	for {
		err := survey.AskOne(prompt, &action)
		if err != nil {
			return err
		}

		method := actions[action]
		err = method(node)
		if err == errExit {
			return nil
		}
		if err != nil {
			printError(err)
		}
	}
}

// -----------------------------------------------------------------------------
// CMD Actions

func connect(node *Node) error {
	addr := ""
	err := survey.AskOne(&survey.Input{Message: "Address of the party:"}, &addr,
		survey.WithValidator(survey.Required))
	if err != nil {
		return err
	}

	return node.Connect(addr)
}

func sendMessage(node *Node) error {
	text := ""
	err := survey.AskOne(&survey.Input{Message: "Message:"}, &text, survey.WithValidator(survey.Required))
	if err != nil {
		return err
	}

	return node.Chat(text)
}

func submitNumbers(node *Node) error {
	raw := ""
	err := survey.AskOne(&survey.Input{Message: "Your private numbers (comma separated):"}, &raw,
		survey.WithValidator(validateNumbers))
	if err != nil {
		return err
	}

	values, err := ParseNumbers(raw)
	if err != nil {
		return err
	}

	err = node.SubmitInputs(values...)
	if err != nil {
		return err
	}

	fmt.Printf("%d numbers were shared.\n", len(values))
	return nil
}

func multiply(node *Node) error {
	err := node.AdvanceMultiplication()
	if err != nil {
		return err
	}

	fmt.Println("Next multiplication step issued.")
	return nil
}

func reconstruct(node *Node) error {
	res, err := node.ReconstructedResult()
	if err != nil {
		return err
	}

	fmt.Printf("The product is %s\n", res)
	return nil
}

func showStatus(node *Node) error {
	fmt.Print(formatStatus(node.Status()))

	for _, chat := range node.GetChats() {
		fmt.Println("  " + chat.String())
	}

	return nil
}

func exitNode(node *Node) error {
	err := node.Stop()
	if err != nil {
		return err
	}

	fmt.Println("bye 👋")
	return errExit
}

// -----------------------------------------------------------------------------
// Utils

// ParseNumbers reads a list of numbers separated by commas or spaces.
func ParseNumbers(raw string) ([]uint64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no number in %q", raw)
	}

	values := make([]uint64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", f)
		}
		values[i] = v
	}
	return values, nil
}

func validateNumbers(ans interface{}) error {
	s, ok := ans.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", ans)
	}
	_, err := ParseNumbers(s)
	return err
}

func printError(err error) {
	fmt.Println("❌", err)
}

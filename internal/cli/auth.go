package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/adboardapp/adboard/internal/common"
	"github.com/adboardapp/adboard/internal/verify"
)

// Login walks the phone verification flow: phone and display name, then a
// code loop. An empty code entry opens a small menu (resend, edit the
// phone, cancel). A successful submission leaves the session logged in.
func (a *App) Login(ctx context.Context) {

	if a.isLoggedIn() {
		fmt.Println("Already logged in")
		return
	}

	flow := a.newFlow()

	phone, err := GetSimpleText(a.reader, "Enter phone number", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	name, err := GetSimpleText(a.reader, "Enter display name (optional)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	if err := flow.RequestCode(ctx, phone, name); err != nil {
		if ve, ok := common.AsValidation(err); ok {
			fmt.Println(ve.Msg)
			return
		}
		log.Printf("could not send code: %v", err)
		return
	}

	for {
		code, err := GetCode(os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}

		if code == "" {
			choice, err := GetSimpleText(a.reader, "Options: resend / edit / cancel", os.Stdout)
			if err != nil {
				log.Printf("error: %v", err)
				return
			}
			switch choice {
			case "resend":
				if err := flow.ResendCode(ctx); err != nil {
					log.Printf("could not resend code: %v", err)
				} else {
					fmt.Println("Code sent again to", flow.Phone())
				}
			case "edit":
				if err := flow.EditPhone(ctx); err != nil {
					log.Printf("error: %v", err)
					return
				}
				phone, err := GetSimpleText(a.reader, "Enter phone number", os.Stdout)
				if err != nil {
					log.Printf("error: %v", err)
					return
				}
				if err := flow.RequestCode(ctx, phone, name); err != nil {
					log.Printf("could not send code: %v", err)
					return
				}
			case "cancel":
				return
			}
			continue
		}

		user, err := flow.SubmitCode(ctx, code)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrVerificationMismatch):
				fmt.Println("Wrong code, try again (empty entry for options)")
				continue
			case errors.Is(err, common.ErrCodeExpired):
				fmt.Println("Code expired, log in again")
				return
			case errors.Is(err, common.ErrNoOutstandingCode):
				fmt.Println("No code outstanding, log in again")
				return
			default:
				log.Printf("login unsuccessful: %v", err)
				return
			}
		}

		fmt.Printf("Logged in as %s\n", user.Name)
		return
	}
}

func (a *App) Logout(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Println("Not logged in")
		return
	}
	if err := a.session.Logout(ctx); err != nil {
		log.Printf("logout error: %v", err)
		return
	}
	if err := verify.PurgeRecords(ctx, a.meta); err != nil {
		log.Printf("could not clear verification records: %v", err)
	}
	a.myAds = nil
	fmt.Println("Logged out")
}

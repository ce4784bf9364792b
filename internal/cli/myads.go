package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/adboardapp/adboard/internal/common"
	"github.com/adboardapp/adboard/internal/confirm"
	"github.com/adboardapp/adboard/internal/services"
)

// MyAds loads and prints the owner dashboard. Toggle and Delete refer to
// the printed numbers.
func (a *App) MyAds(ctx context.Context) {

	user := a.session.Current()
	if user == nil {
		fmt.Println("Not logged in")
		return
	}

	list, err := a.adSvc.ListOwned(ctx, user.ID)
	if err != nil {
		log.Printf("could not load your ads: %v", err)
		return
	}
	a.myAds = list
	a.lastList = list

	st := services.Stats(list)
	fmt.Printf("Your ads: %d active, %d inactive\n", st.Active, st.Inactive)
	for i := range list {
		printAd(i+1, &list[i])
	}
}

// pickAd resolves a 1-based dashboard number from args into an ad pointer.
func (a *App) pickAd(args []string, usage string) (int, bool) {
	if len(args) == 0 {
		fmt.Println("Usage:", usage)
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(a.myAds) {
		fmt.Println("No such ad number, run 'myads' first")
		return 0, false
	}
	return n - 1, true
}

func (a *App) Toggle(ctx context.Context, args []string) {
	i, ok := a.pickAd(args, "toggle <n>")
	if !ok {
		return
	}
	a.adSvc.RequestToggle(&a.myAds[i])
	a.decide(ctx)
}

func (a *App) Delete(ctx context.Context, args []string) {
	i, ok := a.pickAd(args, "delete <n>")
	if !ok {
		return
	}
	a.adSvc.RequestDelete(&a.myAds[i])
	a.decide(ctx)
}

// decide shows the pending action and asks for an explicit yes before
// dispatching it. Anything but "y" cancels and leaves the ad untouched.
func (a *App) decide(ctx context.Context) {
	p := a.gate.Pending()
	if p == nil {
		return
	}

	verb := "Deactivate"
	if p.Kind == confirm.KindDelete {
		verb = "Delete"
	} else if !p.Ad.Active {
		verb = "Activate"
	}

	answer, err := GetSimpleText(a.reader, fmt.Sprintf("%s %q? (y/n)", verb, p.Ad.Title), os.Stdout)
	if err != nil {
		a.gate.Cancel()
		log.Printf("error: %v", err)
		return
	}
	if answer != "y" {
		a.gate.Cancel()
		fmt.Println("Cancelled")
		return
	}

	user := a.session.Current()
	if user == nil {
		a.gate.Cancel()
		fmt.Println("Not logged in")
		return
	}

	kind := p.Kind
	adID := p.Ad.ID
	if err := a.gate.Confirm(ctx, user.ID); err != nil {
		switch {
		case errors.Is(err, common.ErrNotAuthorized):
			fmt.Println("That ad is not yours")
		case errors.Is(err, common.ErrBusy):
			fmt.Println("Previous change still in progress, try again")
		default:
			log.Printf("change failed: %v", err)
		}
		return
	}

	if kind == confirm.KindDelete {
		a.myAds = services.Remove(a.myAds, adID)
		fmt.Println("Deleted")
	} else {
		fmt.Println("Done")
	}
}

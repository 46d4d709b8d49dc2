package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/gamegraph/internal/domain/catalog"
	"github.com/okian/gamegraph/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFailureKinds(t *testing.T) {
	Convey("Given wrapped catalog failures", t, func() {
		private := fmt.Errorf("owned titles: %w", catalog.NewPrivateProfile("765"))
		hidden := fmt.Errorf("friend list: %w", catalog.ErrUnauthorized)

		Convey("Then a private profile is a forbidden failure", func() {
			So(errors.Is(private, catalog.ErrForbidden), ShouldBeTrue)
			So(catalog.IsPrivateProfile(private), ShouldBeTrue)
			So(private.Error(), ShouldContainSubstring, "profile 765 is private")
		})

		Convey("And a hidden friend list is not forbidden", func() {
			So(errors.Is(hidden, catalog.ErrForbidden), ShouldBeFalse)
			So(catalog.IsPrivateProfile(hidden), ShouldBeFalse)
		})

		Convey("And Reason names each kind", func() {
			So(catalog.Reason(nil), ShouldEqual, "ok")
			So(catalog.Reason(private), ShouldEqual, "forbidden")
			So(catalog.Reason(hidden), ShouldEqual, "unauthorized")
			So(catalog.Reason(fmt.Errorf("x: %w", catalog.ErrNotFound)), ShouldEqual, "not_found")
			So(catalog.Reason(context.DeadlineExceeded), ShouldEqual, "error")
		})
	})
}

func TestNameOr(t *testing.T) {
	Convey("Given a partial name map", t, func() {
		names := map[model.AccountID]string{"1": "alice", "2": ""}

		So(catalog.NameOr(names, "1", "Unknown"), ShouldEqual, "alice")
		So(catalog.NameOr(names, "2", "Unknown"), ShouldEqual, "Unknown")
		So(catalog.NameOr(names, "3", "Private Profile"), ShouldEqual, "Private Profile")
		So(catalog.NameOr(nil, "3", "Unknown"), ShouldEqual, "Unknown")
	})
}

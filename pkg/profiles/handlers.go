package profiles

import (
	"net/http"
	"time"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/mediastore"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

type handler struct {
	profileService *Service
	media          mediastore.Resolver
}

func (h *handler) buildResponse(c echo.Context, user *models.User, profile *models.Profile) (ProfileResponse, error) {
	photoURL, err := PhotoURL(c.Request().Context(), h.media, profile)
	if err != nil {
		return ProfileResponse{}, err
	}

	resp := ProfileResponse{
		UserID:   user.ID,
		Username: user.Username,
		Photo:    profile.Photo,
		PhotoURL: photoURL,
	}
	if profile.DateOfBirth != nil {
		dob := profile.DateOfBirth.Format(dateLayout)
		resp.DateOfBirth = &dob
	}
	return resp, nil
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	user := c.Get("user").(*models.User)

	profile, err := h.profileService.RetrieveProfile(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	resp, err := h.buildResponse(c, user, profile)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	user := c.Get("user").(*models.User)

	params := UpdateProfilePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	profile, err := h.profileService.RetrieveProfile(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateProfileOptions{Columns: []string{}}

	if params.DateOfBirth != nil {
		if *params.DateOfBirth == "" {
			profile.DateOfBirth = nil
		} else {
			dob, err := time.Parse(dateLayout, *params.DateOfBirth)
			if err != nil {
				return errcodes.FieldValidationError("date_of_birth", `"date_of_birth" should be in the format of YYYY-MM-DD`)
			}
			profile.DateOfBirth = &dob
		}
		opts.Columns = append(opts.Columns, "date_of_birth")
	}
	if params.Photo != nil {
		if *params.Photo == "" {
			profile.Photo = nil
		} else {
			profile.Photo = params.Photo
		}
		opts.Columns = append(opts.Columns, "photo")
	}

	if err := h.profileService.UpdateProfile(ctx, profile, opts); err != nil {
		return errors.WithStack(err)
	}

	resp, err := h.buildResponse(c, user, profile)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

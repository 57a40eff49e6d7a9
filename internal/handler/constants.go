package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteParamToken is the token parameter pattern.
	RouteParamToken = "/{token}"
	// RouteParamUsername is the username parameter pattern.
	RouteParamUsername = "/{username}"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteRegister is the registration route.
	RouteRegister = "/register"
	// RouteConfirm is the confirmation resend route.
	RouteConfirm = "/confirm"
	// RouteConfirmToken is the confirmation link route pattern.
	RouteConfirmToken = RouteConfirm + RouteParamToken
	// RouteUnconfirmed is the unconfirmed-account interstitial route.
	RouteUnconfirmed = "/unconfirmed"
	// RouteReset is the password reset request route.
	RouteReset = "/reset"
	// RouteResetToken is the password reset link route pattern.
	RouteResetToken = RouteReset + RouteParamToken
	// RouteChangeEmail is the email change request route.
	RouteChangeEmail = "/change_email"
	// RouteChangeEmailToken is the email change link route pattern.
	RouteChangeEmailToken = RouteChangeEmail + RouteParamToken
	// RouteChangePassword is the password change route.
	RouteChangePassword = "/change_password"

	// RouteAll switches the homepage feed to all posts.
	RouteAll = "/all"
	// RouteFollowed switches the homepage feed to followed posts.
	RouteFollowed = "/followed"
	// RouteWrite is the post composer route.
	RouteWrite = "/write"
	// RoutePost is the single post route pattern.
	RoutePost = "/post" + RouteParamID
	// RoutePostComments is the comment submission route pattern.
	RoutePostComments = RoutePost + "/comments"
	// RoutePostDelete is the post deletion route pattern.
	RoutePostDelete = RoutePost + "/delete"
	// RouteEdit is the post editor route pattern.
	RouteEdit = "/edit" + RouteParamID
	// RouteUser is the profile route pattern.
	RouteUser = "/user" + RouteParamUsername
	// RouteEditProfile is the own-profile editor route.
	RouteEditProfile = "/settings/profile"
	// RouteFollow is the follow action route pattern.
	RouteFollow = "/follow" + RouteParamUsername
	// RouteUnfollow is the unfollow action route pattern.
	RouteUnfollow = "/unfollow" + RouteParamUsername
	// RouteFollowers is the followers list route pattern.
	RouteFollowers = "/followers" + RouteParamUsername
	// RouteFollowing is the following list route pattern.
	RouteFollowing = "/following" + RouteParamUsername

	// RouteModerate is the comment moderation route.
	RouteModerate = "/moderate"
	// RouteModerateEnable is the comment enable route pattern.
	RouteModerateEnable = RouteModerate + "/enable" + RouteParamID
	// RouteModerateDisable is the comment disable route pattern.
	RouteModerateDisable = RouteModerate + "/disable" + RouteParamID

	// RouteUsers is the users admin route.
	RouteUsers = "/users"
	// RouteUsersID is the users admin ID route pattern.
	RouteUsersID = RouteUsers + RouteParamID
	// RouteEvents is the event log admin route.
	RouteEvents = "/events"
)

const (
	redirectRoot           = RouteRoot
	redirectLogin          = "/auth" + RouteLogin
	redirectRegister       = "/auth" + RouteRegister
	redirectReset          = "/auth" + RouteReset
	redirectUnconfirmed    = "/auth" + RouteUnconfirmed
	redirectChangeEmail    = "/auth" + RouteChangeEmail
	redirectChangePassword = "/auth" + RouteChangePassword
	redirectModerate       = RouteModerate
	redirectAdminUsers     = "/admin" + RouteUsers

	redirectPostID  = "/post/%d"
	redirectEditID  = "/edit/%d"
	redirectUserFmt = "/user/%s"
)

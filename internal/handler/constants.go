package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteArticles is the article list route.
	RouteArticles = "/articles"
	// RouteProducts is the product list route.
	RouteProducts = "/products"
	// RouteDashboard is the signed-in dashboard.
	RouteDashboard = "/dashboard"
	// RouteLanguage switches the UI language.
	RouteLanguage = "/language"
	// RouteLogin is the login route.
	RouteLogin = "/auth/login"
	// RouteLogout is the logout route.
	RouteLogout = "/auth/logout"
	// RouteHealth is the health check prefix.
	RouteHealth = "/health"
	// RouteStatic serves embedded assets.
	RouteStatic = "/static/*"
	// RouteRobots is the crawler policy.
	RouteRobots = "/robots.txt"
	// RouteSitemap lists the public pages.
	RouteSitemap = "/sitemap.xml"

	// RouteParamSlug is the slug parameter pattern.
	RouteParamSlug = "/{slug}"
	// RouteSuffixComments is the comment post route under an article.
	RouteSuffixComments = "/{slug}/comments"
)

// Template names.
const (
	tmplHome      = "pages/home"
	tmplArticles  = "pages/articles"
	tmplArticle   = "pages/article"
	tmplProducts  = "pages/products"
	tmplProduct   = "pages/product"
	tmplDashboard = "pages/dashboard"
	tmplLogin     = "auth/login"
	tmplNotFound  = "errors/404"
	tmplServer    = "errors/500"
)

// Comment length bounds, in characters.
const (
	commentMinLength = 2
	commentMaxLength = 2000
)

// dashboardEventLimit is how many recent events an admin sees.
const dashboardEventLimit = 10
